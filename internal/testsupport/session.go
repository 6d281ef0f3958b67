package testsupport

import (
	"testing"

	"animecat/internal/config"
	"animecat/internal/logging"
	"animecat/internal/session"
)

// MustOpenSession opens a session for tests and registers cleanup.
func MustOpenSession(t testing.TB, cfg *config.Config, opts ...session.Option) *session.Session {
	t.Helper()

	sess, err := session.Open(cfg, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = sess.Close()
	})
	return sess
}
