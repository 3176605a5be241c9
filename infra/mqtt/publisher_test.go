package mqtt

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Medic423/medport-sub003/core/notify"
	"github.com/Medic423/medport-sub003/infra/logger"
)

type doneToken struct{ err error }

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *doneToken) Error() error { return t.err }

type fakeClient struct {
	mu        sync.Mutex
	published map[string][]byte
}

func (f *fakeClient) IsConnected() bool     { return true }
func (f *fakeClient) Connect() paho.Token   { return &doneToken{} }
func (f *fakeClient) Disconnect(uint)       {}
func (f *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.published == nil {
		f.published = make(map[string][]byte)
	}
	f.published[topic] = payload.([]byte)
	return &doneToken{}
}

func (f *fakeClient) payload(topic string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.published[topic]
	return b, ok
}

func TestPublisher_RoutesByEvent(t *testing.T) {
	cli := &fakeClient{}
	p := &Publisher{cli: cli, prefix: "medport/notifications", log: logger.NopLogger{}}

	p.Notify(notify.Notification{
		Event:     notify.EventBidAccepted,
		RequestID: "r1",
		BidID:     "b1",
		AgencyID:  "a1",
	})

	raw, ok := cli.payload("medport/notifications/bid_accepted")
	if !ok {
		t.Fatalf("nothing published, got %v", cli.published)
	}
	var n notify.Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if n.RequestID != "r1" || n.BidID != "b1" || n.AgencyID != "a1" {
		t.Fatalf("payload fields lost: %+v", n)
	}
	if n.Time.IsZero() {
		t.Fatal("publisher must stamp the notification time")
	}
}

func TestNewClientOptions_TLSRequiresAllPaths(t *testing.T) {
	_, err := NewClientOptions(Config{Broker: "ssl://broker:8883", UseTLS: true, ClientCert: "cert.pem"})
	if err == nil {
		t.Fatal("expected error for incomplete TLS config")
	}
}
