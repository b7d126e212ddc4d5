package amqp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/arrowstream/amqp091/internal/protocol"
)

// URI is a parsed amqp(s) connection string:
// amqp[s]://[user[:pass]@]host[:port]/vhost.
//
// URI parsing is deliberately outside the core connection/channel state
// machines: Dial takes a host:port and a Config directly, and
// ParseURIAndDial is the only thing that calls ParseURI.
type URI struct {
	TLS      bool
	Username string
	Password string
	Host     string
	Port     int
	Vhost    string
}

// ParseURI parses an amqp or amqps URI. A missing vhost defaults to "/", a
// missing port defaults to 5672 (amqp) or 5671 (amqps), and "%2f" in the
// path decodes to the reserved default vhost the same way.
func ParseURI(raw string) (URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URI{}, newPreconditionFailed(fmt.Sprintf("invalid amqp uri: %v", err))
	}

	var out URI
	switch u.Scheme {
	case "amqp":
		out.TLS = false
	case "amqps":
		out.TLS = true
	default:
		return URI{}, newPreconditionFailed(fmt.Sprintf("unsupported uri scheme %q, want amqp or amqps", u.Scheme))
	}

	out.Host = u.Hostname()
	if out.Host == "" {
		return URI{}, newPreconditionFailed("amqp uri is missing a host")
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return URI{}, newPreconditionFailed(fmt.Sprintf("invalid port %q", p))
		}
		out.Port = port
	} else if out.TLS {
		out.Port = protocol.DefaultTLSPort
	} else {
		out.Port = protocol.DefaultPort
	}

	if u.User != nil {
		out.Username = u.User.Username()
		out.Password, _ = u.User.Password()
	}

	vhost := strings.TrimPrefix(u.Path, "/")
	if vhost == "" {
		out.Vhost = "/"
	} else {
		decoded, err := url.PathUnescape(vhost)
		if err != nil {
			return URI{}, newPreconditionFailed(fmt.Sprintf("invalid vhost encoding: %v", err))
		}
		out.Vhost = decoded
	}

	return out, nil
}

// String renders the URI back out, masking the password the way most AMQP
// clients do in logs and error messages.
func (u URI) String() string {
	scheme := "amqp"
	if u.TLS {
		scheme = "amqps"
	}
	userinfo := ""
	if u.Username != "" {
		userinfo = u.Username + ":****@"
	}
	return fmt.Sprintf("%s://%s%s:%d/%s", scheme, userinfo, u.Host, u.Port, url.PathEscape(u.Vhost))
}
