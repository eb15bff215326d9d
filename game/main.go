package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessbot/bots"
	"chessbot/config"
	"chessbot/search"
)

var (
	screenWidth  int
	screenHeight int
	squareSize   int
)

var (
	lightSquare = color.RGBA{240, 217, 181, 255}
	darkSquare  = color.RGBA{181, 136, 99, 255}
	whitePiece  = color.RGBA{245, 245, 245, 255}
	blackPiece  = color.RGBA{30, 30, 30, 255}
)

var pieceLetters = map[chess.Piece]string{
	chess.WhiteKing:   "K",
	chess.WhiteQueen:  "Q",
	chess.WhiteRook:   "R",
	chess.WhiteBishop: "B",
	chess.WhiteKnight: "N",
	chess.WhitePawn:   "P",
	chess.BlackKing:   "k",
	chess.BlackQueen:  "q",
	chess.BlackRook:   "r",
	chess.BlackBishop: "b",
	chess.BlackKnight: "n",
	chess.BlackPawn:   "p",
}

type Game struct {
	chessGame    *chess.Game
	pieces       map[chess.Piece]*ebiten.Image
	squares      [2]*ebiten.Image
	selected     chess.Square
	dragging     *chess.Piece
	dragX, dragY int
	playerColor  chess.Color
	gameStarted  bool
	boardOffsetX int
	boardOffsetY int
	bots         []bots.ChessBot
	botIndex     int

	// guards chessGame moves, botIndex and botThinking between Update and
	// the bot goroutine
	botMutex    sync.Mutex
	botThinking bool
}

func NewGame(botList []bots.ChessBot) *Game {
	screenWidth, screenHeight = ebiten.ScreenSizeInFullscreen()
	if screenWidth == 0 || screenHeight == 0 {
		screenWidth, screenHeight = 800, 880
	}

	// leave room for the status line at the top
	boardHeight := screenHeight - 80
	squareSize = boardHeight / 8
	if screenWidth/8 < squareSize {
		squareSize = screenWidth / 8
	}

	boardWidth := squareSize * 8
	g := &Game{
		pieces:       make(map[chess.Piece]*ebiten.Image),
		bots:         botList,
		boardOffsetX: (screenWidth - boardWidth) / 2,
		boardOffsetY: (screenHeight - boardHeight) / 2,
	}
	g.loadPieceImages()
	return g
}

// loadPieceImages draws a lettered token for every piece.
func (g *Game) loadPieceImages() {
	token := squareSize * 3 / 5
	for piece, letter := range pieceLetters {
		img := ebiten.NewImage(squareSize, squareSize)
		disc := ebiten.NewImage(token, token)
		if piece.Color() == chess.White {
			disc.Fill(whitePiece)
		} else {
			disc.Fill(blackPiece)
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(squareSize-token)/2, float64(squareSize-token)/2)
		img.DrawImage(disc, op)
		ebitenutil.DebugPrintAt(img, letter, squareSize/2-3, squareSize/2-8)
		g.pieces[piece] = img
	}

	for i, clr := range []color.Color{lightSquare, darkSquare} {
		g.squares[i] = ebiten.NewImage(squareSize, squareSize)
		g.squares[i].Fill(clr)
	}
}

func (g *Game) currentBot() bots.ChessBot {
	return g.bots[g.botIndex]
}

func (g *Game) thinking() bool {
	g.botMutex.Lock()
	defer g.botMutex.Unlock()
	return g.botThinking
}

func (g *Game) Update() error {
	if !g.gameStarted {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			x, y := ebiten.CursorPosition()
			btnWidth := 200
			btnHeight := 60
			btnY := screenHeight/2 + 100

			if y > btnY && y < btnY+btnHeight {
				if x > screenWidth/2-btnWidth-20 && x < screenWidth/2-20 {
					g.playerColor = chess.White
					g.startGame()
				} else if x > screenWidth/2+20 && x < screenWidth/2+20+btnWidth {
					g.playerColor = chess.Black
					g.startGame()
				}
			}
		}
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.botMutex.Lock()
		g.botIndex = (g.botIndex + 1) % len(g.bots)
		log.Info().Str("bot", g.bots[g.botIndex].Name()).Msg("bot selected")
		g.botMutex.Unlock()
	}

	if g.thinking() || g.chessGame.Outcome() != chess.NoOutcome {
		return nil
	}

	if g.chessGame.Position().Turn() != g.playerColor {
		g.askBot()
		return nil
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if sq, ok := g.squareAtCursor(); ok {
			piece := g.chessGame.Position().Board().Piece(sq)
			if piece != chess.NoPiece && piece.Color() == g.playerColor {
				g.selected = sq
				g.dragging = &piece
			}
		}
	}
	if g.dragging != nil {
		g.dragX, g.dragY = ebiten.CursorPosition()
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.dragging != nil {
		if target, ok := g.squareAtCursor(); ok {
			if move := findMove(g.chessGame, g.selected, target); move != nil {
				g.botMutex.Lock()
				err := g.chessGame.Move(move)
				g.botMutex.Unlock()
				if err != nil {
					log.Warn().Err(err).Str("move", move.String()).Msg("move rejected")
				}
			}
		}
		g.selected = 0
		g.dragging = nil
	}

	return nil
}

func (g *Game) squareAtCursor() (chess.Square, bool) {
	x, y := ebiten.CursorPosition()
	x -= g.boardOffsetX
	y -= g.boardOffsetY
	if x < 0 || x >= squareSize*8 || y < 0 || y >= squareSize*8 {
		return chess.NoSquare, false
	}
	file := x / squareSize
	rank := 7 - y/squareSize
	return chess.NewSquare(chess.File(file), chess.Rank(rank)), true
}

func (g *Game) startGame() {
	g.chessGame = chess.NewGame()
	g.gameStarted = true
	log.Info().Str("player", g.playerColor.Name()).Str("bot", g.currentBot().Name()).Msg("game started")
}

// askBot starts the bot on its own goroutine; the window keeps drawing
// while it thinks.
func (g *Game) askBot() {
	g.botMutex.Lock()
	g.botThinking = true
	bot := g.currentBot()
	game := g.chessGame.Clone()
	g.botMutex.Unlock()

	go func() {
		start := time.Now()
		move := bot.BestMove(game)

		g.botMutex.Lock()
		defer g.botMutex.Unlock()
		g.botThinking = false
		if move == nil {
			return
		}
		if err := g.chessGame.Move(move); err != nil {
			log.Error().Err(err).Str("bot", bot.Name()).Msg("bot move rejected")
			return
		}
		log.Info().Str("bot", bot.Name()).Str("move", move.String()).Dur("took", time.Since(start)).Msg("bot moved")
	}()
}

// findMove returns the legal move between two squares, promoting to a
// queen when the move is a promotion.
func findMove(game *chess.Game, from, to chess.Square) *chess.Move {
	var found *chess.Move
	for _, m := range game.ValidMoves() {
		if m.S1() != from || m.S2() != to {
			continue
		}
		if m.Promo() == chess.NoPieceType || m.Promo() == chess.Queen {
			return m
		}
		found = m
	}
	return found
}

func (g *Game) Draw(screen *ebiten.Image) {
	if !g.gameStarted {
		ebitenutil.DebugPrintAt(screen, "chessbot", screenWidth/2-30, screenHeight/2-50)
		ebitenutil.DebugPrintAt(screen, "Choose your colour:", screenWidth/2-60, screenHeight/2)

		whiteBtn := ebiten.NewImage(200, 60)
		whiteBtn.Fill(color.RGBA{200, 200, 200, 255})
		ebitenutil.DebugPrintAt(whiteBtn, "Play white", 65, 20)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(screenWidth/2-200-20), float64(screenHeight/2+100))
		screen.DrawImage(whiteBtn, op)

		blackBtn := ebiten.NewImage(200, 60)
		blackBtn.Fill(color.RGBA{50, 50, 50, 255})
		ebitenutil.DebugPrintAt(blackBtn, "Play black", 65, 20)
		op = &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(screenWidth/2+20), float64(screenHeight/2+100))
		screen.DrawImage(blackBtn, op)
		return
	}

	g.botMutex.Lock()
	defer g.botMutex.Unlock()

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(x*squareSize+g.boardOffsetX), float64(y*squareSize+g.boardOffsetY))
			screen.DrawImage(g.squares[(x+y)%2], op)
		}
	}

	board := g.chessGame.Position().Board()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			sq := chess.NewSquare(chess.File(x), chess.Rank(7-y))
			piece := board.Piece(sq)
			if piece == chess.NoPiece || (g.dragging != nil && sq == g.selected) {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(x*squareSize+g.boardOffsetX), float64(y*squareSize+g.boardOffsetY))
			screen.DrawImage(g.pieces[piece], op)
		}
	}

	if g.dragging != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(g.dragX)-float64(squareSize)/2, float64(g.dragY)-float64(squareSize)/2)
		screen.DrawImage(g.pieces[*g.dragging], op)
	}

	status := "Your move"
	if g.botThinking {
		status = "Bot is thinking..."
	} else if g.chessGame.Position().Turn() != g.playerColor {
		status = "Bot to move"
	}
	ebitenutil.DebugPrintAt(screen, status, 20, 20)

	if outcome := g.chessGame.Outcome(); outcome != chess.NoOutcome {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Result: %s (%s)", outcome, g.chessGame.Method()), screenWidth/2-50, 20)
	}
	ebitenutil.DebugPrintAt(screen, "Bot: "+g.currentBot().Name()+"  [B] next bot", 20, screenHeight-40)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default $"+config.EnvPath+")")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := cfg.LogLevel(); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	budget := search.Movetime(time.Duration(cfg.Board.MovetimeMS) * time.Millisecond)
	if cfg.Board.Depth > 0 {
		budget = search.Depth(cfg.Board.Depth)
	}
	searcher := search.New(cfg.Evaluator())

	game := NewGame(bots.All(bots.NewSearchBot(searcher, budget)))
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("chessbot")
	ebiten.SetWindowResizable(true)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("board window")
	}
}
