// Copyright (c) 2026 The ircrelay Authors
// released under the MIT license

package irc

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ergochat/ircrelay/irc/protocol"
)

func TestMetrics(t *testing.T) {
	sessions, channels := 3, 2
	m := NewMetrics(func() int { return sessions }, func() int { return channels })

	m.ConnectionAccepted()
	m.ConnectionAccepted()
	m.MessageProcessed(protocol.PrivMsg)
	m.MessageProcessed(protocol.PrivMsg)
	m.MessageProcessed(protocol.Join)
	m.ParseError()
	m.LinesSent(5)
	m.DeliveryFailed(0)
	m.DeliveryFailed(1)

	assertEqual(testutil.ToFloat64(m.connectionsAccepted), 2.0, t)
	assertEqual(testutil.ToFloat64(m.messagesProcessed.WithLabelValues("PRIVMSG")), 2.0, t)
	assertEqual(testutil.ToFloat64(m.messagesProcessed.WithLabelValues("JOIN")), 1.0, t)
	assertEqual(testutil.ToFloat64(m.parseErrors), 1.0, t)
	assertEqual(testutil.ToFloat64(m.linesSent), 5.0, t)
	assertEqual(testutil.ToFloat64(m.deliveryFailures), 1.0, t)

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(recorder.Result().Body)
	for _, expected := range []string{
		"ircrelay_lines_sent_total 5",
		`ircrelay_messages_processed_total{command="PRIVMSG"} 2`,
		"ircrelay_sessions 3",
		"ircrelay_channels 2",
	} {
		if !strings.Contains(string(body), expected) {
			t.Errorf("metrics output is missing %q:\n%s", expected, body)
		}
	}
}
