// pkg/environ/environ.go

// Package environ builds the CGI-style environment mapping a two-phase
// handler receives alongside its starter.
package environ

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/joeydtaylor/steeze-bridge/pkg/bridge"
)

// Input is the env key holding the request body as an io.Reader.
const Input = "bridge.input"

// FromRequest maps one request into a handler environment. Request
// headers become HTTP_-prefixed upper-case keys; the body is fully read
// and exposed under Input.
func FromRequest(r *http.Request) (bridge.Env, error) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		r.Body.Close()
		body = b
	}

	env := bridge.Env{}
	for name, values := range r.Header {
		env["HTTP_"+strings.ToUpper(name)] = strings.Join(values, ", ")
	}

	remoteAddr, remotePort, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteAddr, remotePort = r.RemoteAddr, ""
	}

	env["REQUEST_METHOD"] = r.Method
	env["PATH_INFO"] = r.URL.Path
	env["REQUEST_URI"] = r.URL.RequestURI()
	env["QUERY_STRING"] = r.URL.RawQuery
	env["SERVER_PROTOCOL"] = r.Proto
	env["REMOTE_ADDR"] = remoteAddr
	env["REMOTE_PORT"] = remotePort
	env["CONTENT_LENGTH"] = fmt.Sprint(len(body))

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/x-www-form-urlencoded"
	}
	env["CONTENT_TYPE"] = contentType

	env[Input] = bytes.NewReader(body)

	return env, nil
}
