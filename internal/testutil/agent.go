// Package testutil provides a fake Jolokia agent for tests.
package testutil

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi"

	"github.com/amiskov/jmx-check/pkg/models"
)

const Context = "jolokia"

type response struct {
	status int
	body   string
}

// Agent serves `/{context}/read/*` like a Jolokia agent does.
type Agent struct {
	*httptest.Server

	mx        sync.Mutex
	responses map[string]response
	requests  []string
	user      string
	password  string
}

func NewAgent() *Agent {
	a := &Agent{responses: make(map[string]response)}

	r := chi.NewRouter()
	r.Get("/{context}/read/*", a.read)
	r.NotFound(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusNotFound)
	})

	a.Server = httptest.NewServer(r)
	return a
}

func (a *Agent) read(rw http.ResponseWriter, r *http.Request) {
	a.mx.Lock()
	defer a.mx.Unlock()

	mbean := chi.URLParam(r, "*")
	a.requests = append(a.requests, mbean)

	if a.user != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != a.user || pass != a.password {
			rw.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	resp, ok := a.responses[mbean]
	if !ok {
		resp = response{
			status: http.StatusOK,
			body:   `{"error_type":"javax.management.InstanceNotFoundException","error":"javax.management.InstanceNotFoundException : ` + mbean + `","status":404}`,
		}
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(resp.status)
	_, _ = rw.Write([]byte(resp.body))
}

// Respond makes the agent answer reads of mbean with the given status and raw body.
func (a *Agent) Respond(mbean string, status int, body string) {
	a.mx.Lock()
	defer a.mx.Unlock()
	a.responses[mbean] = response{status: status, body: body}
}

// Single registers a single MBean response with the given `value` object.
func (a *Agent) Single(mbean string, value map[string]any) {
	jbz, err := json.Marshal(map[string]any{
		"request": map[string]any{"mbean": mbean, "type": "read"},
		"value":   value,
		"status":  200,
	})
	if err != nil {
		panic(err)
	}
	a.Respond(mbean, http.StatusOK, string(jbz))
}

// RequireAuth makes the agent reject requests without these credentials.
func (a *Agent) RequireAuth(user, password string) {
	a.mx.Lock()
	defer a.mx.Unlock()
	a.user, a.password = user, password
}

// Requests returns the MBean paths read so far.
func (a *Agent) Requests() []string {
	a.mx.Lock()
	defer a.mx.Unlock()
	return append([]string(nil), a.requests...)
}

// Connection returns connection parameters pointing to the agent.
func (a *Agent) Connection() models.Agent {
	host, port, err := net.SplitHostPort(a.Listener.Addr().String())
	if err != nil {
		panic(err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		panic(err)
	}
	return models.Agent{Host: host, Port: p, Context: Context}
}

func (a *Agent) MBean(name string) models.MBean {
	return models.NewMBean(name, a.Connection())
}
