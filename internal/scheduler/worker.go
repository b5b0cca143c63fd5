package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"terraflow_backend/internal/email"
	"terraflow_backend/internal/leads/domain"
	"terraflow_backend/internal/leads/repository"
	"terraflow_backend/internal/leads/service"
	"terraflow_backend/internal/notification"
	"terraflow_backend/platform/config"
	"terraflow_backend/platform/logger"
)

// Worker drains the task queue: per-lead hot alerts and the periodic sweep
// that turns stalled leads into attention digests.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	scanner  repository.Scanner
	notifier *notification.Module
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, scanner repository.Scanner, notifier *notification.Module, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		scanner:  scanner,
		notifier: notifier,
		log:      log,
	}

	mux.HandleFunc(TaskAttentionScan, w.handleAttentionScan)
	mux.HandleFunc(TaskHotLeadNotify, w.handleHotLeadNotify)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleHotLeadNotify(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseHotLeadNotifyPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return err
	}

	return w.notifier.NotifyHotLead(ctx, leadID, userID, payload.LeadName, payload.AIScore)
}

// handleAttentionScan finds Contacted leads untouched past the attention
// window, groups them per account, and sends one digest per agent. A failed
// digest doesn't block the others.
func (w *Worker) handleAttentionScan(ctx context.Context, _ *asynq.Task) error {
	now := time.Now()
	cutoff := now.Add(-service.AttentionAfter)

	stale, err := w.scanner.ListStaleAcrossAccounts(ctx, string(domain.StatusContacted), cutoff)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	byAccount := make(map[uuid.UUID][]email.DigestLead)
	for _, lead := range stale {
		byAccount[lead.UserID] = append(byAccount[lead.UserID], email.DigestLead{
			Name:        lead.Name,
			Status:      lead.Status,
			DaysStalled: int(now.Sub(lead.UpdatedAt).Hours() / 24),
		})
	}

	var failed int
	for userID, leads := range byAccount {
		if err := w.notifier.SendAttentionDigest(ctx, userID, leads); err != nil {
			failed++
			w.log.Error("attention digest failed", "user_id", userID, "error", err)
		}
	}

	w.log.Info("attention scan complete",
		"stale_leads", len(stale),
		"accounts", len(byAccount),
		"failed_digests", failed,
	)
	return nil
}
