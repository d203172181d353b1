package otp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures the codes that would have been emailed.
type recordingSender struct {
	mu    sync.Mutex
	codes map[string][]string
	err   error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{codes: make(map[string][]string)}
}

func (s *recordingSender) SendOtp(ctx context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.codes[email] = append(s.codes[email], code)
	return nil
}

func (s *recordingSender) last(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := s.codes[email]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*OtpService, *recordingSender, *fakeClock) {
	t.Helper()
	sender := newRecordingSender()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewOtpService(NewInMemoryRepository(), sender, WithClock(clock.Now))
	return svc, sender, clock
}

func TestGenerateCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestHashCode(t *testing.T) {
	// sha256("123456")
	assert.Equal(t, "8d969eef6ecad3c29a3a629280e686cf0c3f5d5a86aff3ca12020c923adc6c92", HashCode("123456"))
	assert.NotEqual(t, HashCode("123456"), HashCode("123457"))
}

func TestOtpService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("correct code succeeds", func(t *testing.T) {
		svc, sender, _ := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "a@x.com"))

		ok, err := svc.Verify(ctx, "a@x.com", sender.last("a@x.com"))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reissue supersedes the previous code", func(t *testing.T) {
		svc, sender, _ := newTestService(t)
		codes := []string{"111111", "222222"}
		svc.generate = func() (string, error) {
			code := codes[0]
			codes = codes[1:]
			return code, nil
		}

		require.NoError(t, svc.Issue(ctx, "a@x.com"))
		first := sender.last("a@x.com")
		require.NoError(t, svc.Issue(ctx, "a@x.com"))
		second := sender.last("a@x.com")

		ok, err := svc.Verify(ctx, "a@x.com", first)
		require.NoError(t, err)
		assert.False(t, ok, "superseded code must not verify")

		ok, err = svc.Verify(ctx, "a@x.com", second)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong attempt does not consume the live code", func(t *testing.T) {
		svc, sender, _ := newTestService(t)
		svc.generate = func() (string, error) { return "424242", nil }
		require.NoError(t, svc.Issue(ctx, "a@x.com"))

		ok, err := svc.Verify(ctx, "a@x.com", "000000")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = svc.Verify(ctx, "a@x.com", sender.last("a@x.com"))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("code is single use", func(t *testing.T) {
		svc, sender, _ := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "a@x.com"))
		code := sender.last("a@x.com")

		ok, err := svc.Verify(ctx, "a@x.com", code)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = svc.Verify(ctx, "a@x.com", code)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired code fails", func(t *testing.T) {
		svc, sender, clock := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "a@x.com"))

		clock.Advance(DefaultTTL)

		ok, err := svc.Verify(ctx, "a@x.com", sender.last("a@x.com"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("code is valid just before expiry", func(t *testing.T) {
		svc, sender, clock := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "a@x.com"))

		clock.Advance(DefaultTTL - time.Second)

		ok, err := svc.Verify(ctx, "a@x.com", sender.last("a@x.com"))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("email is normalized", func(t *testing.T) {
		svc, sender, _ := newTestService(t)
		require.NoError(t, svc.Issue(ctx, " A@X.com "))

		ok, err := svc.Verify(ctx, "a@x.COM", sender.last("a@x.com"))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("codes are scoped per email", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		codes := []string{"111111", "222222"}
		svc.generate = func() (string, error) {
			code := codes[0]
			codes = codes[1:]
			return code, nil
		}
		require.NoError(t, svc.Issue(ctx, "a@x.com"))
		require.NoError(t, svc.Issue(ctx, "b@x.com"))

		ok, err := svc.Verify(ctx, "b@x.com", "111111")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = svc.Verify(ctx, "a@x.com", "111111")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestOtpService_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("send failure is reported but the code is stored", func(t *testing.T) {
		sender := newRecordingSender()
		sender.err = errors.New("smtp down")
		svc := NewOtpService(NewInMemoryRepository(), sender, WithCodeGenerator(func() (string, error) { return "135790", nil }))

		err := svc.Issue(ctx, "a@x.com")
		assert.Error(t, err)

		ok, err := svc.Verify(ctx, "a@x.com", "135790")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("plaintext code never reaches the log", func(t *testing.T) {
		var buf bytes.Buffer
		previous := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer slog.SetDefault(previous)

		sender := newRecordingSender()
		svc := NewOtpService(NewInMemoryRepository(), sender, WithCodeGenerator(func() (string, error) { return "987654", nil }))
		require.NoError(t, svc.Issue(ctx, "a@x.com"))

		assert.NotEmpty(t, buf.String())
		assert.NotContains(t, buf.String(), "987654")
	})

	t.Run("custom ttl", func(t *testing.T) {
		sender := newRecordingSender()
		clock := &fakeClock{now: time.Now().UTC()}
		svc := NewOtpService(NewInMemoryRepository(), sender, WithTTL(time.Minute), WithClock(clock.Now))
		require.NoError(t, svc.Issue(ctx, "a@x.com"))

		clock.Advance(2 * time.Minute)
		ok, err := svc.Verify(ctx, "a@x.com", sender.last("a@x.com"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
