package models

import (
	"strconv"
	"strings"
)

const (
	DefaultAttribute = "Value"
	DefaultHost      = "localhost"
	DefaultPort      = 8778
	DefaultContext   = "jolokia"
)

// Agent holds connection parameters of a Jolokia agent.
type Agent struct {
	Host     string
	Port     int
	Context  string
	User     string
	Password string
}

func (a Agent) HasCredentials() bool {
	return a.User != "" && a.Password != ""
}

// BaseURL returns `http://host:port/context/`, the context is always slash-terminated.
func (a Agent) BaseURL() string {
	ctx := strings.Trim(a.Context, "/")
	if ctx != "" {
		ctx += "/"
	}
	return "http://" + a.Host + ":" + strconv.Itoa(a.Port) + "/" + ctx
}

// MBean identifies a metric to read from a Jolokia agent.
type MBean struct {
	Name      string // full MBean path, e.g. `java.lang:type=Memory`
	Attribute string
	Key       string // optional, empty means the attribute value is used as is
	Agent     Agent
}

func NewMBean(name string, agent Agent) MBean {
	return MBean{
		Name:      name,
		Attribute: DefaultAttribute,
		Agent:     agent,
	}
}

func (m MBean) WithAttribute(attribute string) MBean {
	if attribute == "" {
		attribute = DefaultAttribute
	}
	m.Attribute = attribute
	return m
}

func (m MBean) WithKey(key string) MBean {
	m.Key = key
	return m
}

// ReadURL returns the URL of the Jolokia `read` request for the MBean.
func (m MBean) ReadURL() string {
	return m.Agent.BaseURL() + "read/" + m.Name
}
