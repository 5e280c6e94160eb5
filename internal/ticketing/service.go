package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/queuepro/internal/catalog"
	"github.com/iliyamo/queuepro/internal/model"
	"github.com/iliyamo/queuepro/internal/monitoring"
)

// Owner identifies the user a token is issued to.  Name and Email are
// copied onto the token for display and receipts.
type Owner struct {
	ID    uint64
	Name  string
	Email string
}

// IssueRequest asks for a new token in a (Branch, ServiceID) queue.
type IssueRequest struct {
	Owner     Owner
	Branch    string
	ServiceID string
}

// TokenView is a token together with its live queue position.  Position
// and wait are zero once the token is no longer waiting.
type TokenView struct {
	model.Token
	Position      int           `json:"position"`
	EstimatedWait time.Duration `json:"-"`
	WaitMinutes   int           `json:"estimated_wait_minutes"`
}

// Advancement is the result of serving a token: the served token and the
// recomputed ranking of the tokens still waiting in its scope.
type Advancement struct {
	Served  model.Token  `json:"served"`
	Waiting []QueueEntry `json:"waiting"`
}

// Options tunes a Service.  Zero values select the defaults.
type Options struct {
	PerToken       time.Duration    // default DefaultPerToken
	MaxAttempts    int              // issue/serve-next retries, default 5, minimum 2
	ReceiptTimeout time.Duration    // default 10s
	Now            func() time.Time // default time.Now
}

// Service issues tokens and advances queues.  It is safe for concurrent
// use; all coordination between callers happens in the Store.
type Service struct {
	store    Store
	catalog  *catalog.Catalog
	numberer *Numberer
	notifier Notifier
	receipts ReceiptSender

	perToken       time.Duration
	maxAttempts    int
	receiptTimeout time.Duration
	now            func() time.Time

	pending sync.WaitGroup
}

// NewService wires a Service.  notifier and receipts may be nil.
func NewService(store Store, cat *catalog.Catalog, notifier Notifier, receipts ReceiptSender, opts Options) *Service {
	s := &Service{
		store:          store,
		catalog:        cat,
		numberer:       NewNumberer(store, cat),
		notifier:       notifier,
		receipts:       receipts,
		perToken:       opts.PerToken,
		maxAttempts:    opts.MaxAttempts,
		receiptTimeout: opts.ReceiptTimeout,
		now:            opts.Now,
	}
	if s.perToken <= 0 {
		s.perToken = DefaultPerToken
	}
	if s.maxAttempts == 0 {
		s.maxAttempts = 5
	}
	if s.maxAttempts < 2 {
		s.maxAttempts = 2
	}
	if s.receiptTimeout <= 0 {
		s.receiptTimeout = 10 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// PerToken returns the service time assumed per waiting token.
func (s *Service) PerToken() time.Duration { return s.perToken }

// Issue creates a waiting token for the request's owner and returns it
// with its initial position.  A number collision with a concurrent issue
// is retried with a freshly computed number.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (TokenView, error) {
	_, svc, ok := s.catalog.Lookup(req.Branch, req.ServiceID)
	if !ok {
		monitoring.TrackTokenOperation("issue", req.Branch, req.ServiceID, KindInvalidScope)
		return TokenView{}, ErrInvalidScope
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		number, createdAt, err := s.nextNumber(ctx, req.Branch, req.ServiceID)
		if err != nil {
			return TokenView{}, fmt.Errorf("next token number: %w", err)
		}
		t := model.Token{
			ID:          uuid.NewString(),
			TokenNumber: number,
			OwnerID:     req.Owner.ID,
			OwnerName:   req.Owner.Name,
			OwnerEmail:  req.Owner.Email,
			Branch:      req.Branch,
			ServiceID:   req.ServiceID,
			ServiceName: svc.Name,
			Status:      model.StatusWaiting,
			CreatedAt:   createdAt,
		}
		err = s.store.Create(ctx, &t)
		if errors.Is(err, ErrDuplicateTokenNumber) {
			monitoring.TrackNumberCollision(req.Branch, req.ServiceID)
			lastErr = err
			continue
		}
		if err != nil {
			monitoring.TrackTokenOperation("issue", req.Branch, req.ServiceID, KindInternal)
			return TokenView{}, fmt.Errorf("create token: %w", err)
		}
		monitoring.TrackTokenOperation("issue", req.Branch, req.ServiceID, "ok")
		return s.afterIssue(ctx, t), nil
	}
	monitoring.TrackTokenOperation("issue", req.Branch, req.ServiceID, KindDuplicateNumber)
	return TokenView{}, fmt.Errorf("issue token after %d attempts: %w", s.maxAttempts, lastErr)
}

// nextNumber computes the next token number and the creation time to
// stamp on it.  The time is read after the number so createdAt order
// follows number order.  If a day boundary falls between the two clock
// reads the number is recomputed for the new day, so a number's date
// suffix and its createdAt always name the same day.
func (s *Service) nextNumber(ctx context.Context, branch, serviceID string) (string, time.Time, error) {
	for {
		now := s.now()
		number, err := s.numberer.Next(ctx, branch, serviceID, now)
		if err != nil {
			return "", time.Time{}, err
		}
		createdAt := s.now()
		if StartOfDay(createdAt).Equal(StartOfDay(now)) {
			return number, createdAt, nil
		}
	}
}

func (s *Service) afterIssue(ctx context.Context, t model.Token) TokenView {
	view := TokenView{Token: t}
	waiting, err := s.store.ListWaiting(ctx, t.Branch, t.ServiceID)
	if err != nil {
		log.Printf("ticketing: list waiting after issue of %s: %v", t.TokenNumber, err)
	} else {
		view = s.view(t, waiting)
		monitoring.SetWaiting(t.Branch, t.ServiceID, len(waiting))
	}

	s.publish(ctx, Event{
		Type:        EventTokenCreated,
		Branch:      t.Branch,
		ServiceID:   t.ServiceID,
		TokenNumber: t.TokenNumber,
		Position:    view.Position,
	})
	s.sendReceipt(Receipt{
		Kind:        ReceiptIssued,
		TokenNumber: t.TokenNumber,
		OwnerName:   t.OwnerName,
		OwnerEmail:  t.OwnerEmail,
		Branch:      t.Branch,
		ServiceName: t.ServiceName,
		Position:    view.Position,
		IssuedAt:    t.CreatedAt.Format(time.RFC3339),
	})
	return view
}

// Get returns the token with the given number and its live position.
func (s *Service) Get(ctx context.Context, number string) (TokenView, error) {
	t, err := s.store.FindByNumber(ctx, number)
	if err != nil {
		return TokenView{}, err
	}
	if !t.IsWaiting() {
		return TokenView{Token: t}, nil
	}
	waiting, err := s.store.ListWaiting(ctx, t.Branch, t.ServiceID)
	if err != nil {
		return TokenView{}, fmt.Errorf("list waiting: %w", err)
	}
	return s.view(t, waiting), nil
}

// ListForOwner returns the owner's tokens, newest first, each with its
// live position.
func (s *Service) ListForOwner(ctx context.Context, ownerID uint64) ([]TokenView, error) {
	tokens, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner tokens: %w", err)
	}
	snapshots := make(map[[2]string][]model.Token)
	out := make([]TokenView, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsWaiting() {
			out = append(out, TokenView{Token: t})
			continue
		}
		key := [2]string{t.Branch, t.ServiceID}
		waiting, ok := snapshots[key]
		if !ok {
			waiting, err = s.store.ListWaiting(ctx, t.Branch, t.ServiceID)
			if err != nil {
				return nil, fmt.Errorf("list waiting: %w", err)
			}
			snapshots[key] = waiting
		}
		out = append(out, s.view(t, waiting))
	}
	return out, nil
}

// Queue returns every token of a scope in queue order.  Waiting tokens
// carry their position.
func (s *Service) Queue(ctx context.Context, branch, serviceID string) ([]TokenView, error) {
	if _, _, ok := s.catalog.Lookup(branch, serviceID); !ok {
		return nil, ErrInvalidScope
	}
	all, err := s.store.ListScope(ctx, branch, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list scope: %w", err)
	}
	waiting := make([]model.Token, 0, len(all))
	for _, t := range all {
		if t.IsWaiting() {
			waiting = append(waiting, t)
		}
	}
	out := make([]TokenView, 0, len(all))
	for _, t := range all {
		out = append(out, s.view(t, waiting))
	}
	return out, nil
}

// ServeNext serves the earliest waiting token of a scope.  When another
// caller serves the head first, the new head is tried.
func (s *Service) ServeNext(ctx context.Context, branch, serviceID string) (Advancement, error) {
	if _, _, ok := s.catalog.Lookup(branch, serviceID); !ok {
		monitoring.TrackTokenOperation("serve", branch, serviceID, KindInvalidScope)
		return Advancement{}, ErrInvalidScope
	}
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		waiting, err := s.store.ListWaiting(ctx, branch, serviceID)
		if err != nil {
			return Advancement{}, fmt.Errorf("list waiting: %w", err)
		}
		if len(waiting) == 0 {
			monitoring.TrackTokenOperation("serve", branch, serviceID, KindEmptyQueue)
			return Advancement{}, ErrEmptyQueue
		}
		served, err := s.store.MarkServed(ctx, waiting[0].ID, s.now())
		if errors.Is(err, ErrAlreadyTerminal) || errors.Is(err, ErrNotFound) {
			lastErr = err
			continue
		}
		if err != nil {
			return Advancement{}, fmt.Errorf("mark served: %w", err)
		}
		return s.afterServe(ctx, served), nil
	}
	return Advancement{}, fmt.Errorf("serve next after %d attempts: %w", s.maxAttempts, lastErr)
}

// Serve serves the token with the given id.
func (s *Service) Serve(ctx context.Context, tokenID string) (Advancement, error) {
	served, err := s.store.MarkServed(ctx, tokenID, s.now())
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrAlreadyTerminal) {
			err = fmt.Errorf("mark served: %w", err)
		}
		return Advancement{}, err
	}
	return s.afterServe(ctx, served), nil
}

func (s *Service) afterServe(ctx context.Context, served model.Token) Advancement {
	monitoring.TrackTokenOperation("serve", served.Branch, served.ServiceID, "ok")
	adv := Advancement{Served: served, Waiting: []QueueEntry{}}
	waiting, err := s.store.ListWaiting(ctx, served.Branch, served.ServiceID)
	if err != nil {
		log.Printf("ticketing: list waiting after serving %s: %v", served.TokenNumber, err)
	} else {
		adv.Waiting = RankWaiting(waiting, s.perToken)
		monitoring.SetWaiting(served.Branch, served.ServiceID, len(waiting))
	}

	s.publish(ctx, Event{
		Type:        EventTokenServed,
		Branch:      served.Branch,
		ServiceID:   served.ServiceID,
		TokenNumber: served.TokenNumber,
	})
	if err == nil {
		s.publish(ctx, Event{
			Type:      EventQueueUpdated,
			Branch:    served.Branch,
			ServiceID: served.ServiceID,
			Tokens:    adv.Waiting,
		})
	}
	s.sendReceipt(Receipt{
		Kind:        ReceiptServed,
		TokenNumber: served.TokenNumber,
		OwnerName:   served.OwnerName,
		OwnerEmail:  served.OwnerEmail,
		Branch:      served.Branch,
		ServiceName: served.ServiceName,
		IssuedAt:    served.CreatedAt.Format(time.RFC3339),
	})
	return adv
}

// Wait blocks until receipts handed off so far have been attempted.
func (s *Service) Wait() { s.pending.Wait() }

func (s *Service) view(t model.Token, waiting []model.Token) TokenView {
	pos, wait := PositionOf(t, waiting, s.perToken)
	return TokenView{Token: t, Position: pos, EstimatedWait: wait, WaitMinutes: int(wait / time.Minute)}
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		monitoring.TrackSideEffectFailure("notify")
		log.Printf("ticketing: publish %s for %s/%s: %v", ev.Type, ev.Branch, ev.ServiceID, err)
	}
}

func (s *Service) sendReceipt(r Receipt) {
	if s.receipts == nil || r.OwnerEmail == "" {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.receiptTimeout)
		defer cancel()
		if err := s.receipts.SendReceipt(ctx, r); err != nil {
			monitoring.TrackSideEffectFailure("receipt")
			log.Printf("ticketing: %s receipt for %s: %v", r.Kind, r.TokenNumber, err)
		}
	}()
}
