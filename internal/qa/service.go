package qa

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/suPer8Hu/insight-platform/internal/ai"
	"github.com/suPer8Hu/insight-platform/internal/common"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TurnStore is the persistence capability the engine needs for turns.
type TurnStore interface {
	Create(ctx context.Context, t *Turn) error
	GetByID(ctx context.Context, id string) (*Turn, error)
	MarkGenerating(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, answer string) error
	MarkFailed(ctx context.Context, id string) error
	ListByReport(ctx context.Context, userID uint64, marketplaceID, reportID string) ([]Turn, error)
	RecentCompletedBefore(ctx context.Context, reportID, excludeID string, limit int) ([]Turn, error)
}

// ContextProvider resolves a report's context blob and domain. ok=false means
// the report is absent or has no analyzable context.
type ContextProvider interface {
	Context(ctx context.Context, reportID string) (datatypes.JSON, string, bool, error)
}

// Engine orchestrates the QA session lifecycle: init -> stream -> terminal
// status. One engine serves all report domains; only the system prompt varies.
type Engine struct {
	turns    TurnStore
	reports  ContextProvider
	provider ai.Provider
	window   int
}

func NewEngine(turns TurnStore, reports ContextProvider, provider ai.Provider, window int) *Engine {
	if window <= 0 || window > 50 {
		window = 5
	}
	return &Engine{turns: turns, reports: reports, provider: provider, window: window}
}

// InitChat creates a PENDING turn and returns it. Fails fast with
// ErrContextMissing before writing anything when the report has no context:
// a turn must never reference an unanalyzable report.
func (e *Engine) InitChat(ctx context.Context, userID uint64, marketplaceID, reportID, question string) (*Turn, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrQuestionEmpty
	}

	_, _, ok, err := e.reports.Context(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrContextMissing
	}

	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	turn := &Turn{
		ID:            id,
		ReportID:      reportID,
		UserID:        userID,
		MarketplaceID: marketplaceID,
		Question:      question,
		Status:        StatusPending,
	}
	if err := e.turns.Create(ctx, turn); err != nil {
		return nil, err
	}
	return turn, nil
}

// StreamAnswer streams the model's answer for a previously initialized turn.
// Fragments arrive on chunks in model order; a terminal failure arrives on
// errs. Both channels close when the session ends. Normal close of chunks
// with no error means the answer was committed (DONE).
func (e *Engine) StreamAnswer(ctx context.Context, qaID string) (<-chan string, <-chan error) {
	outChunks := make(chan string, 16)
	outErrs := make(chan error, 1)

	go func() {
		defer close(outChunks)
		defer close(outErrs)

		// 1) load the turn; unknown id mutates nothing
		turn, err := e.turns.GetByID(ctx, qaID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outErrs <- ErrSessionNotFound
				return
			}
			outErrs <- err
			return
		}

		// 2) re-fetch context; a read-time miss is not a generation failure,
		// so the turn's status is left untouched
		blob, domain, ok, err := e.reports.Context(ctx, turn.ReportID)
		if err != nil {
			outErrs <- err
			return
		}
		if !ok {
			outErrs <- ErrContextMissing
			return
		}

		// 3) commit GENERATING before the first model token is requested;
		// a crash from here on leaves a detectable signature
		if err := e.turns.MarkGenerating(ctx, qaID); err != nil {
			outErrs <- err
			return
		}

		// 4) assemble model input
		messages, err := e.buildMessages(ctx, turn, blob, domain)
		if err != nil {
			outErrs <- err
			e.handleFailure(qaID)
			return
		}

		sp, ok2 := e.provider.(ai.StreamProvider)
		if !ok2 {
			outErrs <- errors.New("qa: provider does not support streaming")
			e.handleFailure(qaID)
			return
		}

		// 5) forward fragments in arrival order while accumulating
		pChunks, pErrs := sp.StreamChat(ctx, messages)

		var b strings.Builder
		for c := range pChunks {
			b.WriteString(c)
			select {
			case outChunks <- c:
			case <-ctx.Done():
				// client gone; stop consuming and treat as failure
				outErrs <- ctx.Err()
				e.handleFailure(qaID)
				return
			}
		}

		// provider closes errs after chunks; a buffered error means failure
		if err, open := <-pErrs; open && err != nil {
			outErrs <- err
			e.handleFailure(qaID)
			return
		}

		// 6) commit the final answer before signalling DONE
		if err := e.turns.MarkCompleted(ctx, qaID, b.String()); err != nil {
			outErrs <- err
			e.handleFailure(qaID)
			return
		}
	}()

	return outChunks, outErrs
}

// GenerateAnswer is the non-streaming variant used by the queue worker. Same
// state machine, single blocking model call.
func (e *Engine) GenerateAnswer(ctx context.Context, qaID string) error {
	turn, err := e.turns.GetByID(ctx, qaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	blob, domain, ok, err := e.reports.Context(ctx, turn.ReportID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrContextMissing
	}

	if err := e.turns.MarkGenerating(ctx, qaID); err != nil {
		return err
	}

	messages, err := e.buildMessages(ctx, turn, blob, domain)
	if err != nil {
		e.handleFailure(qaID)
		return err
	}

	answer, err := e.provider.Chat(ctx, messages)
	if err != nil {
		e.handleFailure(qaID)
		return err
	}

	return e.turns.MarkCompleted(ctx, qaID, answer)
}

// Turn loads a single turn by id.
func (e *Engine) Turn(ctx context.Context, qaID string) (*Turn, error) {
	turn, err := e.turns.GetByID(ctx, qaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return turn, nil
}

// History returns all turns on the report for the caller, oldest first.
func (e *Engine) History(ctx context.Context, userID uint64, marketplaceID, reportID string) ([]Turn, error) {
	return e.turns.ListByReport(ctx, userID, marketplaceID, reportID)
}

// buildMessages assembles the model input: domain system prompt embedding the
// serialized context blob, a sliding window of prior completed turns (final
// answers only, never thought text), then the current question.
func (e *Engine) buildMessages(ctx context.Context, turn *Turn, blob datatypes.JSON, domain string) ([]ai.Message, error) {
	messages := make([]ai.Message, 0, 2*e.window+2)
	messages = append(messages, ai.Message{
		Role:    "system",
		Content: promptForDomain(domain) + "\n\nData:\n" + string(blob),
	})

	history, err := e.turns.RecentCompletedBefore(ctx, turn.ReportID, turn.ID, e.window)
	if err != nil {
		return nil, err
	}
	for _, h := range history {
		if h.Question == "" || h.Answer == nil {
			continue
		}
		messages = append(messages,
			ai.Message{Role: "user", Content: h.Question},
			ai.Message{Role: "assistant", Content: *h.Answer},
		)
	}

	messages = append(messages, ai.Message{Role: "user", Content: turn.Question})
	return messages, nil
}

// handleFailure writes the FAILED status best-effort. The stream consumer has
// already been told the session failed; a write error here is only logged so
// the primary error is not masked by a secondary one.
func (e *Engine) handleFailure(qaID string) {
	if err := e.turns.MarkFailed(context.Background(), qaID); err != nil {
		log.Printf("qa: mark failed qa_id=%s err=%v", qaID, err)
	}
}
