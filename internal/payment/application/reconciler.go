package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	orderapp "github.com/ateliemimos/store/internal/order/application"
	orderdomain "github.com/ateliemimos/store/internal/order/domain"
	"github.com/ateliemimos/store/internal/payment/domain"
	"github.com/ateliemimos/store/pkg/tracing"
)

// RedirectSignal names the browser-redirect entry points.
type RedirectSignal string

const (
	RedirectSuccess RedirectSignal = "sucesso"
	RedirectFailure RedirectSignal = "falha"
	RedirectPending RedirectSignal = "pendente"
)

var ErrUnknownSignal = errors.New("unknown redirect signal")

// Reconciler applies asynchronous payment signals to the order ledger. The
// two entry points (browser redirects, processor webhook) may race or
// replay; every write carries an event time and the ledger rejects writes
// older than the one already applied, so applying in any order converges.
type Reconciler struct {
	log    *slog.Logger
	ledger OrderLedger
	client ProcessorClient
	dedup  Deduper
}

func NewReconciler(log *slog.Logger, ledger OrderLedger, client ProcessorClient, dedup Deduper) *Reconciler {
	return &Reconciler{log: log, ledger: ledger, client: client, dedup: dedup}
}

// ApplyRedirect handles one of the three back-URL callbacks. Redirects are
// advisory: the browser carries no processor-verified payload, so they
// stamp the receipt time and never set a payment id.
func (r *Reconciler) ApplyRedirect(ctx context.Context, orderID string, sig RedirectSignal) error {
	var st orderdomain.PaymentStatus
	confirm := false
	switch sig {
	case RedirectSuccess:
		st, confirm = orderdomain.PaymentApproved, true
	case RedirectFailure:
		st = orderdomain.PaymentRejected
	case RedirectPending:
		st = orderdomain.PaymentPending
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSignal, sig)
	}

	err := r.apply(ctx, orderID, st, "", confirm, time.Now().UTC())
	if errors.Is(err, orderapp.ErrStaleEvent) {
		r.log.Info("redirect superseded by newer payment event", "order_id", orderID, "signal", sig)
		return nil
	}
	return err
}

// HandleWebhook processes one processor notification. Irrelevant kinds,
// unknown correlation references and redeliveries are all acknowledged
// no-ops; only infrastructure faults return an error.
func (r *Reconciler) HandleWebhook(ctx context.Context, ev domain.WebhookEvent) error {
	if ev.Type != "payment" || ev.DataID == "" {
		r.log.Info("ignoring webhook event", "type", ev.Type)
		return nil
	}
	if r.client == nil {
		r.log.Warn("webhook received but no processor configured", "data_id", ev.DataID)
		return nil
	}

	p, err := r.client.Payment(ctx, ev.DataID)
	if err != nil {
		return fmt.Errorf("fetch payment %s: %w", ev.DataID, err)
	}
	if p.ExternalReference == "" {
		r.log.Warn("payment without correlation reference", "payment_id", p.ID)
		return nil
	}

	var dedupKey string
	if r.dedup != nil {
		dedupKey = r.dedup.Key(p.ID, p.Status)
		seen, err := r.dedup.Seen(ctx, dedupKey)
		if err != nil {
			return fmt.Errorf("dedup check: %w", err)
		}
		if seen {
			r.log.Info("duplicate payment notification skipped", "payment_id", p.ID, "status", p.Status)
			return nil
		}
	}

	var st orderdomain.PaymentStatus
	confirm := false
	switch p.Status {
	case domain.ProcessorApproved:
		st, confirm = orderdomain.PaymentApproved, true
	case domain.ProcessorRejected:
		st = orderdomain.PaymentRejected
	default:
		st = orderdomain.PaymentPending
	}

	eventAt := p.LastUpdated
	if eventAt.IsZero() {
		eventAt = time.Now().UTC()
	}

	err = r.apply(ctx, p.ExternalReference, st, p.ID, confirm, eventAt)
	switch {
	case errors.Is(err, orderapp.ErrNotFound):
		r.log.Warn("payment references unknown order", "payment_id", p.ID, "reference", p.ExternalReference)
	case errors.Is(err, orderapp.ErrStaleEvent):
		r.log.Info("stale payment notification skipped", "payment_id", p.ID, "order_id", p.ExternalReference)
	case err != nil:
		// not marked as seen: the processor's redelivery gets to retry
		return err
	}

	if r.dedup != nil {
		if err := r.dedup.Mark(ctx, dedupKey); err != nil {
			r.log.Warn("marking notification failed", "payment_id", p.ID, "err", err)
		}
	}
	return nil
}

func (r *Reconciler) apply(ctx context.Context, orderID string, st orderdomain.PaymentStatus, paymentID string, confirm bool, eventAt time.Time) error {
	changed := orderdomain.PaymentStatusChanged{
		OrderID:       orderID,
		PaymentID:     paymentID,
		PaymentStatus: st,
		EventAt:       eventAt,
	}
	payload, err := json.Marshal(changed)
	if err != nil {
		return err
	}
	headers := map[string]string{"source": "payment-reconciler"}
	if err := r.ledger.ApplyPaymentEvent(ctx, orderID, st, paymentID, confirm, eventAt, "PaymentStatusChanged", payload, headers, tracing.Traceparent(ctx)); err != nil {
		return err
	}
	r.log.Info("payment status applied", "order_id", orderID, "status", st, "payment_id", paymentID)
	return nil
}
