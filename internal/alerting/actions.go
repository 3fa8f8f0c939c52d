package alerting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/sentinel/internal/logging"
	"github.com/FairForge/sentinel/internal/notify"
)

// toastDuration is how long non-critical toasts stay on screen
const toastDuration = 5 * time.Second

// executeAction runs one notification step, isolating its failures so a
// broken channel never blocks the rest of the action list.
func (e *Engine) executeAction(ctx context.Context, action *Action, trigger *Trigger) {
	defer func() {
		if r := recover(); r != nil {
			e.ops.Error("alert action fault",
				zap.String("action", action.Type),
				zap.String("trigger_id", trigger.ID),
				zap.Any("panic", r))
		}
	}()

	switch action.Type {
	case ActionToast:
		e.toastAlert(action, trigger)
	case ActionConsole:
		e.consoleAlert(action, trigger)
	case ActionEmail:
		e.emailAlert(ctx, action, trigger)
	case ActionWebhook:
		e.webhookAlert(ctx, action, trigger)
	case ActionStorage:
		e.storeAlert(ctx, action, trigger)
	case ActionFunction:
		e.functionAlert(action, trigger)
	default:
		e.ops.Warn("unknown alert action type", zap.String("action", action.Type))
	}
}

// toastAlert enqueues a user-facing notification. Critical toasts do not
// auto-dismiss and carry an acknowledge affordance that resolves the trigger.
func (e *Engine) toastAlert(action *Action, trigger *Trigger) {
	n := &notify.Notification{
		Message:     action.Message,
		Description: fmt.Sprintf("Triggered at %s", trigger.TriggeredAt.Format("15:04:05")),
		Priority:    action.Priority,
		Duration:    toastDuration,
	}
	if action.Priority == PriorityCritical {
		n.Duration = 0
		id := trigger.ID
		n.OnAcknowledge = func() { e.AcknowledgeAlert(id) }
	}
	e.sink.Notify(n)
}

func (e *Engine) consoleAlert(action *Action, trigger *Trigger) {
	message := fmt.Sprintf("[%s] %s", trigger.TriggeredAt.Format(time.RFC3339), action.Message)
	fields := []zap.Field{
		zap.String("rule", trigger.RuleName),
		zap.String("trigger_id", trigger.ID),
	}

	switch action.Priority {
	case PriorityCritical:
		e.ops.Error(message, fields...)
	case PriorityHigh:
		e.ops.Warn(message, fields...)
	default:
		e.ops.Info(message, fields...)
	}
}

func (e *Engine) emailAlert(ctx context.Context, action *Action, trigger *Trigger) {
	if e.emails == nil {
		return
	}
	if err := e.emails.Send(ctx, action.Target, trigger.RuleName, trigger.Message); err != nil {
		e.ops.Warn("email alert failed", zap.String("trigger_id", trigger.ID), zap.Error(err))
	}
}

// webhookAlert posts the trigger to the operator's URL. Failures are logged
// as a warning into the main pipeline; this is a different trigger class and
// cannot recurse.
func (e *Engine) webhookAlert(ctx context.Context, action *Action, trigger *Trigger) {
	if e.webhooks == nil || action.Target == "" {
		return
	}

	payload := map[string]interface{}{
		"alert":     trigger,
		"action":    action,
		"timestamp": trigger.TriggeredAt.Format(time.RFC3339),
	}
	if err := e.webhooks.Send(ctx, action.Target, payload); err != nil {
		if e.logger != nil {
			e.logger.Warn("monitoring_alerts", "webhook_failed", "webhook alert delivery failed",
				logging.Fields{"target": action.Target, "trigger_id": trigger.ID, "error": err.Error()})
		}
		return
	}
	if e.logger != nil {
		e.logger.Info("monitoring_alerts", "webhook_sent", "webhook alert sent",
			logging.Fields{"target": action.Target, "trigger_id": trigger.ID})
	}
}

func (e *Engine) storeAlert(ctx context.Context, action *Action, trigger *Trigger) {
	if e.store == nil {
		return
	}
	if err := e.store.InsertAlert(ctx, trigger, action.Priority); err != nil {
		if e.logger != nil {
			e.logger.Warn("monitoring_alerts", "storage_failed", "alert persistence failed",
				logging.Fields{"trigger_id": trigger.ID, "error": err.Error()})
		}
		return
	}
	if e.logger != nil {
		e.logger.Info("monitoring_alerts", "alert_stored", "alert stored to database",
			logging.Fields{"trigger_id": trigger.ID})
	}
}

func (e *Engine) functionAlert(action *Action, trigger *Trigger) {
	// Custom function hooks are the hosting application's concern.
	e.ops.Info("function alert would be executed",
		zap.String("trigger_id", trigger.ID),
		zap.Any("config", action.Config))
}
