package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chessbot/search"
)

const mateFEN = "4r2k/1p3rbp/2p1N1p1/p3n3/P2NB1nq/1P6/4R1P1/B1Q2RK1 b - - 4 32"

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(search.New(nil))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postSearch(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url+"/api/search", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return resp, buf.Bytes()
}

func TestPing(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/ping")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || !got["ok"] {
		t.Errorf("want: 200 ok got: %d %v", resp.StatusCode, got)
	}
}

func TestSearch(t *testing.T) {
	// arrange
	_, ts := newTestServer(t)
	body := `{"fen":"` + mateFEN + `","depth":3}`

	// act
	resp, data := postSearch(t, ts.URL, body)

	// assert
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want: 200 got: %d %s", resp.StatusCode, data)
	}
	var got SearchResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.BestMove != "h4h2" {
		t.Errorf("want: h4h2 got: %s", got.BestMove)
	}
	if got.Score != search.MateIn(1) || got.Depth != 3 {
		t.Errorf("want mate at depth 3 got: score %d depth %d", got.Score, got.Depth)
	}
	if len(got.Lines) != 3 {
		t.Errorf("want: 3 lines got: %d", len(got.Lines))
	}
}

func TestSearchWithMoves(t *testing.T) {
	_, ts := newTestServer(t)

	resp, data := postSearch(t, ts.URL, `{"moves":["e2e4","e7e5"],"nodes":1}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want: 200 got: %d %s", resp.StatusCode, data)
	}
	var got SearchResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Depth != 1 || got.BestMove == "" || got.BestMove == "0000" {
		t.Errorf("want a depth 1 move got: %+v", got)
	}
}

func TestSearchBadRequest(t *testing.T) {
	// arrange
	_, ts := newTestServer(t)
	bodies := []string{
		`{`,
		`{"depth":3,"nodes":5}`,
		`{}`,
		`{"depth":-1}`,
		`{"wtime":1000}`,
		`{"fen":"not a fen","depth":1}`,
		`{"moves":["e2e5"],"depth":1}`,
		`{"infinite":true}`,
	}

	for _, body := range bodies {
		// act
		resp, data := postSearch(t, ts.URL, body)

		// assert
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: want: 400 got: %d %s", body, resp.StatusCode, data)
		}
	}
}

func TestSearchBusy(t *testing.T) {
	s, ts := newTestServer(t)
	s.busy.Lock()
	defer s.busy.Unlock()

	resp, data := postSearch(t, ts.URL, `{"depth":1}`)

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("want: 409 got: %d %s", resp.StatusCode, data)
	}
}

func dialSearch(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/search"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := wsMessage{Type: typ}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		msg.Payload = data
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatal(err)
	}
}

// readUntilBestmove collects messages up to and including bestmove.
func readUntilBestmove(t *testing.T, conn *websocket.Conn) []wsMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(30 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var msgs []wsMessage
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("after %d messages: %v", len(msgs), err)
		}
		msgs = append(msgs, msg)
		if msg.Type == "bestmove" || msg.Type == "error" {
			return msgs
		}
	}
}

func TestSearchWebsocket(t *testing.T) {
	// arrange
	_, ts := newTestServer(t)
	conn := dialSearch(t, ts)
	depth := int64(3)

	// act
	sendWS(t, conn, "search", SearchRequest{FEN: mateFEN, Depth: &depth})
	msgs := readUntilBestmove(t, conn)

	// assert
	if len(msgs) != 4 {
		t.Fatalf("want 3 info and a bestmove got: %d", len(msgs))
	}
	for i, msg := range msgs[:3] {
		var p search.Progress
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			t.Fatal(err)
		}
		if msg.Type != "info" || p.Depth != i+1 {
			t.Errorf("want info for depth %d got: %s %d", i+1, msg.Type, p.Depth)
		}
	}
	var best SearchResponse
	if err := json.Unmarshal(msgs[3].Payload, &best); err != nil {
		t.Fatal(err)
	}
	if best.BestMove != "h4h2" {
		t.Errorf("want: h4h2 got: %s", best.BestMove)
	}
}

func TestSearchWebsocketStop(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialSearch(t, ts)

	sendWS(t, conn, "search", SearchRequest{Infinite: true})
	sendWS(t, conn, "stop", nil)
	msgs := readUntilBestmove(t, conn)

	last := msgs[len(msgs)-1]
	if last.Type != "bestmove" {
		t.Fatalf("want bestmove got: %s %s", last.Type, last.Payload)
	}
	var best SearchResponse
	if err := json.Unmarshal(last.Payload, &best); err != nil {
		t.Fatal(err)
	}
	if best.BestMove == "" || best.BestMove == "0000" {
		t.Errorf("want a move got: %q", best.BestMove)
	}
}

func TestSearchWebsocketBadRequest(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialSearch(t, ts)

	sendWS(t, conn, "search", SearchRequest{})
	msgs := readUntilBestmove(t, conn)

	if len(msgs) != 1 || msgs[0].Type != "error" {
		t.Errorf("want one error got: %+v", msgs)
	}
}
