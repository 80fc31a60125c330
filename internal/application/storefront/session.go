package storefront

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/view"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// Toast texts
const (
	toastTitleWidth    = 20
	toastAddedSuffix   = "ditambahkan ke keranjang!"
	toastLineRemoved   = "Item dihapus dari keranjang"
	toastOrderSent     = "Pesanan berhasil dikirim ke WhatsApp"
	DefaultToastExpiry = 3 * time.Second
)

// CatalogStateReader exposes the catalog status shown in snapshots
type CatalogStateReader interface {
	State() CatalogState
}

// SessionConfig holds per-session behavior
type SessionConfig struct {
	// ToastDuration is how long a toast stays visible
	ToastDuration time.Duration
	// Strict returns defect-class errors to the caller instead of degrading
	// them to a logged no-op. Enabled outside production.
	Strict bool
}

// SessionDeps are the collaborators shared by every session
type SessionDeps struct {
	Store    *catalog.Store
	Catalog  CatalogStateReader
	Pricing  *pricing.Policy
	Composer *order.Composer
	Logger   *zap.Logger
	Metrics  Metrics
	Now      func() time.Time
}

type toast struct {
	id        uint64
	message   string
	expiresAt time.Time
	timer     *time.Timer
}

// Session is the state of one storefront visitor: its own cart ledger,
// overlay state and toasts over the shared catalog store.
// All mutations go through Dispatch and are serialized.
type Session struct {
	id   string
	cfg  SessionConfig
	deps SessionDeps

	mu         sync.Mutex
	ledger     *cart.Ledger
	view       *view.Machine
	toasts     []*toast
	nextToast  uint64
	lastActive time.Time
	closed     bool
}

// NewSession creates an empty session with the overlay closed
func NewSession(id string, cfg SessionConfig, deps SessionDeps) *Session {
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = DefaultToastExpiry
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	return &Session{
		id:         id,
		cfg:        cfg,
		deps:       deps,
		ledger:     cart.NewLedger(deps.Store, deps.Pricing),
		view:       view.NewMachine(deps.Store.Has),
		lastActive: deps.Now(),
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// LastActive returns when the session last handled an intent
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Dispatch applies one intent. User-correctable errors (empty cart,
// incomplete draft, invalid transition) are returned with the state left
// unchanged. Defect-class errors are returned only in strict mode; otherwise
// they are logged and the intent becomes a no-op.
func (s *Session) Dispatch(ctx context.Context, intent Intent) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = s.deps.Now()
	log := logger.WithLogger(ctx, s.deps.Logger.With(
		zap.String("session_id", s.id),
		zap.String("intent", string(intent.Type)),
	))

	before := s.view.State()
	effects, err := s.apply(ctx, intent)
	if err != nil {
		if !shared.IsDefect(err) {
			log.Debug("Intent rejected", zap.Error(err))
			s.deps.Metrics.RecordIntent(ctx, string(intent.Type), OutcomeRejected)
			return Result{}, err
		}
		if s.cfg.Strict {
			log.Error("Intent referenced missing data", zap.Error(err))
			s.deps.Metrics.RecordIntent(ctx, string(intent.Type), OutcomeFailed)
			return Result{}, err
		}
		log.Warn("Intent referenced missing data, ignored", zap.Error(err))
		s.deps.Metrics.RecordIntent(ctx, string(intent.Type), OutcomeIgnored)
		effects = nil
	} else {
		s.deps.Metrics.RecordIntent(ctx, string(intent.Type), OutcomeApplied)
	}

	after := s.view.State()
	if t := (view.Transition{From: before, To: after}); t.ScrollLockChanged() {
		locked := after.IsOpen()
		effects = append([]Effect{{Type: EffectScrollLock, ScrollLocked: &locked}}, effects...)
	}

	return Result{Snapshot: s.snapshotLocked(), Effects: effects}, nil
}

func (s *Session) apply(ctx context.Context, intent Intent) ([]Effect, error) {
	switch intent.Type {
	case IntentOpenProduct:
		_, err := s.view.OpenProduct(intent.ProductID)
		return nil, err

	case IntentAddToCart:
		product, err := s.deps.Store.Get(intent.ProductID)
		if err != nil {
			return nil, err
		}
		if _, err := s.ledger.Add(product.ID); err != nil {
			return nil, err
		}
		s.view.ProductAdded(product.ID)
		s.pushToast(fmt.Sprintf("%s %s", product.ShortTitle(toastTitleWidth), toastAddedSuffix))
		return nil, nil

	case IntentRemoveLine:
		var err error
		if intent.ExpectedProductID != nil {
			_, err = s.ledger.RemoveAtChecked(intent.Index, *intent.ExpectedProductID)
		} else {
			_, err = s.ledger.RemoveAt(intent.Index)
		}
		if err != nil {
			return nil, err
		}
		s.pushToast(toastLineRemoved)
		return nil, nil

	case IntentOpenCart:
		_, err := s.view.OpenCart()
		return nil, err

	case IntentOpenCheckout:
		_, err := s.view.OpenCheckout(s.ledger.IsEmpty())
		return nil, err

	case IntentSubmitCheckout:
		return s.submit(ctx, intent)

	case IntentDismiss:
		s.view.Dismiss()
		return nil, nil

	case IntentCancelKey:
		s.view.CancelKey()
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unknown intent %q", shared.ErrInvalidInput, intent.Type)
	}
}

func (s *Session) submit(ctx context.Context, intent Intent) ([]Effect, error) {
	if err := s.view.RequireCheckout(); err != nil {
		return nil, err
	}
	lines := len(s.ledger.Lines())

	handoff, err := s.deps.Composer.Submit(order.NewDraft(intent.CustomerName, intent.CustomerAddress), s.ledger)
	if err != nil {
		return nil, err
	}
	total, err := s.ledger.GrandTotal()
	if err != nil {
		return nil, err
	}

	s.ledger.Clear()
	if _, err := s.view.Submitted(); err != nil {
		return nil, err
	}
	s.pushToast(toastOrderSent)
	s.deps.Metrics.RecordOrderSubmitted(ctx, lines, total.Amount())

	return []Effect{{
		Type: EffectHandoff,
		Handoff: &HandoffView{
			Recipient: handoff.Recipient,
			Message:   handoff.Message,
			URL:       handoff.URL,
		},
	}}, nil
}

// Reconcile drops cart lines and the detail overlay whose products vanished
// from the catalog. It runs after every catalog load or clear.
func (s *Session) Reconcile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := s.ledger.Prune(s.deps.Store.Has)
	t := s.view.Invalidate()
	if len(pruned) > 0 || t.Changed() {
		s.deps.Logger.Info("Session reconciled with catalog",
			zap.String("session_id", s.id),
			zap.Int("pruned_lines", len(pruned)),
			zap.Stringer("view", s.view.State()))
	}
}

// Snapshot returns the current render input
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops pending toast timers
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, t := range s.toasts {
		t.timer.Stop()
	}
	s.toasts = nil
}

func (s *Session) snapshotLocked() Snapshot {
	policy := s.deps.Pricing
	snap := Snapshot{
		SessionID:    s.id,
		View:         viewStateView(s.view.State()),
		ScrollLocked: s.view.ScrollLocked(),
		Toasts:       make([]ToastView, 0, len(s.toasts)),
	}
	if s.deps.Catalog != nil {
		snap.Catalog = s.deps.Catalog.State()
	}

	grand := policy.Zero()
	lines := s.ledger.Lines()
	snap.Cart.Lines = make([]CartLineView, 0, len(lines))
	for i, line := range lines {
		// A line can briefly outlive its product between a catalog swap and Reconcile
		product, err := s.deps.Store.Get(line.ProductID)
		if err != nil {
			continue
		}
		unit := policy.DisplayPrice(product.Price)
		total := policy.LineTotal(product.Price, line.Quantity)
		grand = grand.MustAdd(total)
		snap.Cart.Lines = append(snap.Cart.Lines, CartLineView{
			Index:           i,
			ProductID:       product.ID,
			Title:           product.Title,
			ImageURL:        product.ImageURL,
			Quantity:        line.Quantity,
			UnitPrice:       policy.Format(unit),
			UnitPriceAmount: unit.IntPart(),
			LineTotal:       policy.Format(total),
			LineTotalAmount: total.IntPart(),
		})
		snap.Cart.TotalQuantity += line.Quantity
	}
	snap.Cart.GrandTotal = policy.Format(grand)
	snap.Cart.GrandTotalAmount = grand.IntPart()
	snap.Cart.CanCheckout = len(snap.Cart.Lines) > 0

	for _, t := range s.toasts {
		snap.Toasts = append(snap.Toasts, ToastView{ID: t.id, Message: t.message, ExpiresAt: t.expiresAt})
	}
	return snap
}

func (s *Session) pushToast(message string) {
	if s.closed {
		return
	}
	s.nextToast++
	t := &toast{
		id:        s.nextToast,
		message:   message,
		expiresAt: s.deps.Now().Add(s.cfg.ToastDuration),
	}
	id := t.id
	t.timer = time.AfterFunc(s.cfg.ToastDuration, func() {
		s.expireToast(id)
	})
	s.toasts = append(s.toasts, t)
}

func (s *Session) expireToast(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.toasts {
		if t.id == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

func viewStateView(state view.State) ViewStateView {
	v := ViewStateView{Kind: string(state.Kind)}
	if state.Kind == view.KindProductDetail {
		id := state.ProductID
		v.ProductID = &id
	}
	return v
}
