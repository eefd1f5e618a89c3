package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"repoprep/internal/interview"
	"repoprep/internal/llm/stream"
)

const (
	practiceWSWriteWait = 10 * time.Second
	practiceWSPongWait  = 60 * time.Second
	practiceWSPingEvery = (practiceWSPongWait * 9) / 10
	practiceWSReadLimit = 64 << 10

	// PracticeErrorMessage is sent when grading fails after the stream opened.
	PracticeErrorMessage = "Error connecting to AI tutor. Please try again."
)

var practiceWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type practiceWSInbound struct {
	Type        string `json:"type"`
	Question    string `json:"question,omitempty"`
	IdealAnswer string `json:"idealAnswer,omitempty"`
	Answer      string `json:"answer,omitempty"`
}

type practiceWSOutbound struct {
	Type     string `json:"type"`
	Session  string `json:"session,omitempty"`
	Fragment string `json:"fragment,omitempty"`
	Content  string `json:"content,omitempty"`
	Message  string `json:"message,omitempty"`
}

// HandlePracticeWS grades answers over a websocket, streaming feedback as
// fragment messages. A connection runs at most one answer at a time; a
// cancel message aborts it.
func (h *Handler) HandlePracticeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := practiceWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(practiceWSReadLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	session := uuid.NewString()

	if err := conn.SetReadDeadline(time.Now().Add(practiceWSPongWait)); err != nil {
		log.Printf("practice ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(practiceWSPongWait))
	})

	writeCh := make(chan practiceWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(practiceWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(practiceWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(practiceWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
	push := func(out practiceWSOutbound) {
		select {
		case writeCh <- out:
		case <-ctx.Done():
		}
	}

	var (
		mu          sync.Mutex
		abortAnswer context.CancelFunc
		answers     sync.WaitGroup
	)
	defer answers.Wait()

	push(practiceWSOutbound{Type: "ready", Session: session})

	for {
		var in practiceWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(practiceWSOutbound{Type: "pong"})
		case "cancel":
			mu.Lock()
			if abortAnswer != nil {
				abortAnswer()
			}
			mu.Unlock()
		case "answer":
			if strings.TrimSpace(in.Answer) == "" {
				push(practiceWSOutbound{Type: "error", Message: "answer is required"})
				continue
			}
			if !h.llm.Configured() {
				push(practiceWSOutbound{Type: "error", Message: MissingKeyStreamMessage})
				continue
			}
			mu.Lock()
			if abortAnswer != nil {
				mu.Unlock()
				push(practiceWSOutbound{Type: "error", Message: "an answer is already being graded"})
				continue
			}
			actx, acancel := context.WithCancel(ctx)
			abortAnswer = acancel
			mu.Unlock()

			answers.Add(1)
			go func(in practiceWSInbound) {
				defer answers.Done()
				final := h.gradeAnswer(actx, session, in, push)
				mu.Lock()
				abortAnswer = nil
				mu.Unlock()
				acancel()
				push(final)
			}(in)
		case "":
			push(practiceWSOutbound{Type: "error", Message: "type is required"})
		default:
			push(practiceWSOutbound{Type: "error", Message: "unsupported type: " + in.Type})
		}
	}
}

// gradeAnswer streams fragments through push and returns the terminal
// message (done, aborted or error).
func (h *Handler) gradeAnswer(ctx context.Context, session string, in practiceWSInbound, push func(practiceWSOutbound)) practiceWSOutbound {
	msgs := interview.GradingMessages(in.Question, in.IdealAnswer, in.Answer, true)
	body, err := h.llm.OpenStream(ctx, msgs)
	if err != nil {
		if ctx.Err() != nil {
			return practiceWSOutbound{Type: "aborted"}
		}
		log.Printf("practice ws session=%s: open stream failed: %v", session, err)
		return practiceWSOutbound{Type: "error", Message: PracticeErrorMessage}
	}
	defer body.Close()

	dec := stream.NewDecoder(func(fragment, cumulative string) {
		push(practiceWSOutbound{Type: "fragment", Fragment: fragment, Content: cumulative})
	})
	text, err := dec.Decode(ctx, body)
	switch dec.State() {
	case stream.Completed:
		return practiceWSOutbound{Type: "done", Content: text}
	case stream.Aborted:
		return practiceWSOutbound{Type: "aborted", Content: text}
	default:
		log.Printf("practice ws session=%s: stream %s: %v", session, dec.State(), err)
		return practiceWSOutbound{Type: "error", Content: text, Message: PracticeErrorMessage}
	}
}
