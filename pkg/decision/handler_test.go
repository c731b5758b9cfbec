package decision

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corevalidate/middleware/pkg/validate"
)

func TestRequestDecisionResolvesViaRespond(t *testing.T) {
	h := New(nil, false, false)

	var gotID string
	var mu sync.Mutex
	h.Subscribe(func(req Request) {
		mu.Lock()
		gotID = req.ID
		mu.Unlock()
		go h.Respond(req.ID, validate.Response{Decision: validate.DecisionApproved})
	})

	resp, err := h.RequestDecision(validate.DecisionApproveReject, "title", "desc", nil, nil, "", nil)
	require.NoError(t, err)
	require.Equal(t, validate.DecisionApproved, resp.Decision)
	require.False(t, resp.RespondedAt.IsZero())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, gotID)
}

func TestRespondResolvesExactlyOnce(t *testing.T) {
	h := New(nil, false, false)
	h.Subscribe(func(req Request) {
		go func() {
			first := h.Respond(req.ID, validate.Response{Decision: validate.DecisionApproved})
			second := h.Respond(req.ID, validate.Response{Decision: validate.DecisionRejected})
			require.True(t, first)
			require.False(t, second)
		}()
	})

	resp, err := h.RequestDecision(validate.DecisionApproveReject, "t", "d", nil, nil, "", nil)
	require.NoError(t, err)
	require.Equal(t, validate.DecisionApproved, resp.Decision)
	require.False(t, h.HasPending())
}

func TestRespondUnknownIDReturnsFalse(t *testing.T) {
	h := New(nil, false, false)
	require.False(t, h.Respond("missing", validate.Response{Decision: validate.DecisionApproved}))
}

func TestTimeoutProducesDeferredByDefault(t *testing.T) {
	h := New(nil, false, false)
	resp, err := h.RequestDecision(validate.DecisionApproveReject, "t", "d", nil, nil, "", &validate.RequestOptions{TimeoutMS: 10})
	require.NoError(t, err)
	require.Equal(t, validate.DecisionDeferred, resp.Decision)
}

func TestTimeoutProducesRejectedWhenAutoRejectEnabled(t *testing.T) {
	h := New(nil, false, true)
	resp, err := h.RequestDecision(validate.DecisionApproveReject, "t", "d", nil, nil, "", &validate.RequestOptions{TimeoutMS: 10})
	require.NoError(t, err)
	require.Equal(t, validate.DecisionRejected, resp.Decision)
}

func TestCancelResolvesPendingRequest(t *testing.T) {
	h := New(nil, false, false)
	h.Subscribe(func(req Request) {
		go h.Cancel(req.ID)
	})

	resp, err := h.RequestDecision(validate.DecisionApproveReject, "t", "d", nil, nil, "", nil)
	require.NoError(t, err)
	require.Equal(t, validate.DecisionRejected, resp.Decision)
	require.Equal(t, "Request cancelled", resp.Comment)
}

func TestCleanupCancelsAllPending(t *testing.T) {
	h := New(nil, false, false)

	results := make(chan validate.Response, 2)
	for i := 0; i < 2; i++ {
		go func() {
			resp, _ := h.RequestDecision(validate.DecisionApproveReject, "t", "d", nil, nil, "", nil)
			results <- *resp
		}()
	}

	require.Eventually(t, func() bool { return h.HasPending() }, time.Second, 5*time.Millisecond)
	h.Cleanup()

	for i := 0; i < 2; i++ {
		resp := <-results
		require.Equal(t, validate.DecisionRejected, resp.Decision)
	}
	require.False(t, h.HasPending())
}

func TestFeedPublisherReceivesEntries(t *testing.T) {
	var entries []string
	var mu sync.Mutex
	h := New(func(entry string) {
		mu.Lock()
		entries = append(entries, entry)
		mu.Unlock()
	}, true, false)

	h.Subscribe(func(req Request) {
		go h.Respond(req.ID, validate.Response{Decision: validate.DecisionApproved})
	})

	_, err := h.RequestDecision(validate.DecisionApproveReject, "t", "d", nil, nil, "", nil)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, entries, 2)
}
