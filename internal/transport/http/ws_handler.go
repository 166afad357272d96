package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/quiz"
)

type WSHandler struct {
	service  *quiz.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *quiz.Service) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	ExamTag    string `json:"examTag"`
	Difficulty string `json:"difficulty"`
	Amount     int    `json:"amount"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type lifelinePayload struct {
	Kind string `json:"kind"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// eventPayload is the wire form of a session event. Fields that do not apply
// to the event type stay off the frame.
type eventPayload struct {
	Question *quiz.QuestionView  `json:"question,omitempty"`
	TimeLeft int                 `json:"timeLeft"`
	Outcome  *domain.Outcome     `json:"outcome,omitempty"`
	Summary  *domain.Summary     `json:"summary,omitempty"`
	Lifeline domain.Lifeline     `json:"lifeline,omitempty"`
	Hidden   []string            `json:"hidden,omitempty"`
	State    domain.SessionState `json:"state"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz
// session use cases. One connection drives at most one session at a time;
// dropping the connection mid-session aborts it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var pumps sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	var sessionID string
	var cancelEvents func()
	stopSession := func(abort bool) {
		if cancelEvents != nil {
			cancelEvents()
			cancelEvents = nil
		}
		if abort && sessionID != "" {
			h.service.Abort(context.Background(), sessionID)
		}
		sessionID = ""
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorFrame("invalid start payload")
				continue
			}
			if sessionID != "" {
				send <- errorFrame("session already in progress")
				continue
			}
			session, err := h.service.StartSession(r.Context(), userID, payload.ExamTag, domain.Difficulty(payload.Difficulty), payload.Amount)
			if err != nil {
				send <- errorFrame(err.Error())
				continue
			}
			sessionID = session.ID()
			events, cancel := session.Subscribe()
			cancelEvents = cancel
			pumps.Add(1)
			go func() {
				defer pumps.Done()
				pumpEvents(events, send, closeSignals)
			}()
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorFrame("invalid answer payload")
				continue
			}
			if err := h.service.Submit(r.Context(), sessionID, payload.Answer); err != nil {
				send <- errorFrame(err.Error())
			}
		case "lifeline":
			var payload lifelinePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorFrame("invalid lifeline payload")
				continue
			}
			result, err := h.service.UseLifeline(r.Context(), sessionID, domain.Lifeline(payload.Kind))
			if err != nil {
				send <- errorFrame(err.Error())
				continue
			}
			if result.Done {
				stopSession(false)
			}
		case "advance":
			done, err := h.service.Advance(r.Context(), sessionID)
			if err != nil {
				send <- errorFrame(err.Error())
				continue
			}
			if done {
				stopSession(false)
			}
		case "quit":
			stopSession(true)
		default:
			send <- errorFrame("unsupported message type")
		}
	}

	stopSession(true)
	close(closeSignals)
	pumps.Wait()
	close(send)
	<-writerDone
}

// pumpEvents forwards session events onto the writer channel until either
// side shuts down.
func pumpEvents(events <-chan quiz.Event, send chan<- outboundMessage[any], closeSignals <-chan struct{}) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			msg := outboundMessage[any]{Type: string(ev.Type), Payload: eventPayload{
				Question: ev.Question,
				TimeLeft: ev.TimeLeft,
				Outcome:  ev.Outcome,
				Summary:  ev.Summary,
				Lifeline: ev.Lifeline,
				Hidden:   ev.Hidden,
				State:    ev.State,
			}}
			select {
			case send <- msg:
			case <-closeSignals:
				return
			}
		case <-closeSignals:
			return
		}
	}
}

func errorFrame(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
