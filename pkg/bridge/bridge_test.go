package bridge

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textHandler(status string, headers []Header, chunks ...string) Handler[[][]byte] {
	return func(env Env, start Starter) ([][]byte, error) {
		if err := start.Start(status, headers); err != nil {
			return nil, err
		}
		body := make([][]byte, 0, len(chunks))
		for _, c := range chunks {
			body = append(body, []byte(c))
		}
		return body, nil
	}
}

func TestInvoke_CapturesStatusHeadersAndBody(t *testing.T) {
	b := New[[][]byte]()

	res, err := b.Invoke(textHandler("200 OK", []Header{{"Content-Type", "text/plain"}}, "hi"), Env{})

	require.NoError(t, err)
	assert.Equal(t, "200 OK", res.Status)
	assert.Equal(t, []Header{{"Content-Type", "text/plain"}}, res.Headers)
	require.Len(t, res.Body, 1)
	assert.Equal(t, "hi", string(res.Body[0]))
}

func TestInvoke_PreservesBodyIdentity(t *testing.T) {
	b := New[*bytes.Buffer]()
	buf := bytes.NewBufferString("Hello World")

	res, err := b.Invoke(func(env Env, start Starter) (*bytes.Buffer, error) {
		require.NoError(t, start.Start("200 OK", nil))
		return buf, nil
	}, Env{})

	require.NoError(t, err)
	assert.Same(t, buf, res.Body)
}

func TestInvoke_PreservesHeaderOrderAndDuplicates(t *testing.T) {
	headers := []Header{
		{"set-cookie", "a=1"},
		{"Content-Type", "text/html"},
		{"Set-Cookie", "b=2"},
		{"set-cookie", "a=1"},
	}
	b := New[[][]byte]()

	res, err := b.Invoke(textHandler("302 Found", headers), Env{})

	require.NoError(t, err)
	// Exact order, no dedup, no case normalization.
	assert.Equal(t, headers, res.Headers)
}

func TestInvoke_PassesEnvThroughUnmodified(t *testing.T) {
	env := Env{"REQUEST_METHOD": "GET", "PATH_INFO": "/orders"}
	b := New[[][]byte]()

	_, err := b.Invoke(func(got Env, start Starter) ([][]byte, error) {
		assert.Equal(t, env, got)
		require.NoError(t, start.Start("204 No Content", nil))
		return nil, nil
	}, env)

	require.NoError(t, err)
	assert.Equal(t, Env{"REQUEST_METHOD": "GET", "PATH_INFO": "/orders"}, env)
}

func TestInvoke_NeverStarted(t *testing.T) {
	b := New[[][]byte]()

	res, err := b.Invoke(func(env Env, start Starter) ([][]byte, error) {
		return [][]byte{[]byte("ignored")}, nil
	}, Env{})

	var pv *ProtocolError
	require.ErrorAs(t, err, &pv)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Zero(t, res)
}

func TestInvoke_StartedTwice(t *testing.T) {
	b := New[[][]byte]()

	res, err := b.Invoke(func(env Env, start Starter) ([][]byte, error) {
		require.NoError(t, start.Start("200 OK", nil))
		// The second call is rejected at the call site too.
		assert.ErrorIs(t, start.Start("500 Internal Server Error", nil), ErrStartedTwice)
		return nil, nil
	}, Env{})

	var pv *ProtocolError
	require.ErrorAs(t, err, &pv)
	assert.ErrorIs(t, err, ErrStartedTwice)
	assert.Zero(t, res)
}

func TestInvoke_HandlerErrorAfterStart(t *testing.T) {
	boom := errors.New("boom")
	b := New[[][]byte]()

	res, err := b.Invoke(func(env Env, start Starter) ([][]byte, error) {
		require.NoError(t, start.Start("200 OK", []Header{{"Content-Type", "text/plain"}}))
		return nil, boom
	}, Env{})

	var he *HandlerError
	require.ErrorAs(t, err, &he)
	assert.ErrorIs(t, err, boom)
	// The partial capture is discarded with the failed invocation.
	assert.Zero(t, res)
}

func TestInvoke_HandlerErrorWithoutStartIsViolation(t *testing.T) {
	boom := errors.New("boom")
	b := New[[][]byte]()

	_, err := b.Invoke(func(env Env, start Starter) ([][]byte, error) {
		return nil, boom
	}, Env{})

	// The violation wins over the handler's own failure...
	var pv *ProtocolError
	require.ErrorAs(t, err, &pv)
	assert.ErrorIs(t, err, ErrNotStarted)
	var he *HandlerError
	assert.False(t, errors.As(err, &he))
	// ...but the cause stays reachable.
	assert.ErrorIs(t, err, boom)
}

func TestInvoke_HandlerErrorAfterDoubleStartIsViolation(t *testing.T) {
	boom := errors.New("boom")
	b := New[[][]byte]()

	_, err := b.Invoke(func(env Env, start Starter) ([][]byte, error) {
		_ = start.Start("200 OK", nil)
		_ = start.Start("201 Created", nil)
		return nil, boom
	}, Env{})

	var pv *ProtocolError
	require.ErrorAs(t, err, &pv)
	assert.ErrorIs(t, err, ErrStartedTwice)
	assert.ErrorIs(t, err, boom)
}

func TestInvoke_PanicAfterStartIsHandlerError(t *testing.T) {
	b := New[[][]byte]()

	res, err := b.Invoke(func(env Env, start Starter) ([][]byte, error) {
		require.NoError(t, start.Start("200 OK", nil))
		panic("kaboom")
	}, Env{})

	var he *HandlerError
	require.ErrorAs(t, err, &he)
	assert.Contains(t, err.Error(), "kaboom")
	assert.Zero(t, res)
}

func TestInvoke_PanicWithoutStartIsViolation(t *testing.T) {
	b := New[[][]byte]()

	_, err := b.Invoke(func(env Env, start Starter) ([][]byte, error) {
		panic("kaboom")
	}, Env{})

	var pv *ProtocolError
	require.ErrorAs(t, err, &pv)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestInvoke_SequentialInvocationsDoNotLeak(t *testing.T) {
	b := New[[][]byte]()

	res, err := b.Invoke(textHandler("200 OK", []Header{{"Content-Type", "text/plain"}}, "first"), Env{})
	require.NoError(t, err)
	assert.Equal(t, "200 OK", res.Status)

	// The second invocation never starts; nothing from the first may be
	// observable through it.
	res2, err := b.Invoke(func(env Env, start Starter) ([][]byte, error) {
		return nil, nil
	}, Env{})
	require.ErrorIs(t, err, ErrNotStarted)
	assert.Zero(t, res2)
}

func TestInvoke_Reentrant(t *testing.T) {
	b := New[[][]byte]()

	res, err := b.Invoke(func(env Env, start Starter) ([][]byte, error) {
		// Delegate to a sub-handler through the same bridge before
		// declaring our own response.
		inner, err := b.Invoke(textHandler("404 Not Found", []Header{{"X-Inner", "yes"}}, "nope"), env)
		require.NoError(t, err)
		require.Equal(t, "404 Not Found", inner.Status)

		if err := start.Start("200 OK", []Header{{"X-Outer", "yes"}}); err != nil {
			return nil, err
		}
		return inner.Body, nil
	}, Env{})

	require.NoError(t, err)
	assert.Equal(t, "200 OK", res.Status)
	assert.Equal(t, []Header{{"X-Outer", "yes"}}, res.Headers)
}

func TestInvoke_Concurrent(t *testing.T) {
	b := New[[][]byte]()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := fmt.Sprintf("200 OK-%d", i)
			res, err := b.Invoke(textHandler(status, []Header{{"X-N", fmt.Sprint(i)}}, "x"), Env{})
			assert.NoError(t, err)
			assert.Equal(t, status, res.Status)
			assert.Equal(t, []Header{{"X-N", fmt.Sprint(i)}}, res.Headers)
		}(i)
	}
	wg.Wait()
}
