package bot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"scorebot/internal/groupme"
)

// Routes returns the webhook router.
func (b *Bot) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID(log.Logger), Logging, Recovery)

	r.Get("/healthz", b.handleHealth)
	r.Post("/", b.handleCallback)
	return r
}

// handleCallback answers one GroupMe bot callback. GroupMe ignores the
// response body, so replies go out through the bot API before returning.
func (b *Bot) handleCallback(w http.ResponseWriter, r *http.Request) {
	var msg groupme.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid message", http.StatusBadRequest)
		return
	}

	l := zerolog.Ctx(r.Context()).With().
		Str("message_id", msg.ID).
		Str("sender_id", msg.SenderID).
		Logger()
	ctx := l.WithContext(r.Context())

	if reply := b.Dispatch(ctx, &msg); reply != "" {
		if err := b.poster.Post(ctx, reply); err != nil {
			l.Error().Err(err).Msg("Failed to post reply")
		}
	}
	_, _ = w.Write([]byte("ok"))
}

func (b *Bot) handleHealth(w http.ResponseWriter, r *http.Request) {
	if b.health != nil {
		if err := b.health.HealthCheck(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Health check failed")
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	_, _ = w.Write([]byte("ok"))
}

// Serve listens on the configured port until ctx is cancelled, then shuts
// the server down gracefully.
func (b *Bot) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         b.cfg.Server.Addr(),
		Handler:      b.Routes(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Webhook server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Stopping webhook server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), b.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
