package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Medic423/medport-sub003/core/bid"
	"github.com/Medic423/medport-sub003/core/history"
	"github.com/Medic423/medport-sub003/core/model"
	"github.com/Medic423/medport-sub003/core/notify"
	"github.com/Medic423/medport-sub003/core/registry"
	"github.com/Medic423/medport-sub003/core/request"
	"github.com/Medic423/medport-sub003/infra/mqtt"
	"github.com/Medic423/medport-sub003/internal/keymutex"
)

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
`
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		t.Logf("mosquitto not ready at %s: %v", broker, err)
		t.Skip("Mosquitto not ready after retries")
	}
	return cont, broker
}

// collector subscribes to the notification topic tree and records every
// message it sees, keyed by topic suffix.
type collector struct {
	mu   sync.Mutex
	seen map[string][]notify.Notification
}

func newCollector(t *testing.T, broker string) (*collector, paho.Client) {
	t.Helper()
	c := &collector{seen: make(map[string][]notify.Notification)}
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-collector")
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("collector connect: %v", token.Error())
	}
	if token := cli.Subscribe("medport/notifications/+", 1, func(_ paho.Client, m paho.Message) {
		var n notify.Notification
		if err := json.Unmarshal(m.Payload(), &n); err != nil {
			return
		}
		c.mu.Lock()
		c.seen[string(n.Event)] = append(c.seen[string(n.Event)], n)
		c.mu.Unlock()
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("collector subscribe: %v", token.Error())
	}
	return c, cli
}

func (c *collector) get(event string) []notify.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notify.Notification, len(c.seen[event]))
	copy(out, c.seen[event])
	return out
}

func (c *collector) waitFor(event string, timeout time.Duration) ([]notify.Notification, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if ns := c.get(event); len(ns) > 0 {
			return ns, true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil, false
}

func TestBidLifecycleNotificationsOverMQTT(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	col, cli := newCollector(t, broker)
	defer cli.Disconnect(100)

	pub, err := mqtt.NewPublisher(mqtt.Config{Broker: broker, ClientID: "e2e-publisher", QoS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Close()

	reg := registry.New()
	if err := reg.PutFacility(model.Facility{ID: "f-origin", Name: "Origin", Location: model.GeoPoint{Lat: 40.27, Lon: -76.88}}); err != nil {
		t.Fatalf("put facility: %v", err)
	}
	if err := reg.PutFacility(model.Facility{ID: "f-dest", Name: "Destination", Location: model.GeoPoint{Lat: 39.95, Lon: -75.16}}); err != nil {
		t.Fatalf("put facility: %v", err)
	}
	if err := reg.PutAgency(model.Agency{ID: "a1", Name: "Agency One", HomeFacilityID: "f-origin"}); err != nil {
		t.Fatalf("put agency: %v", err)
	}
	if err := reg.PutUnit(model.Unit{ID: "u1", AgencyID: "a1", Level: model.LevelALS, Status: model.UnitAvailable}); err != nil {
		t.Fatalf("put unit: %v", err)
	}

	locks := keymutex.New()
	tracker := history.NewMemoryTracker(nil, nil)
	store := request.NewStore(reg, tracker, locks, nil, pub, nil)
	tracker.SetChecker(store)
	ledger := bid.NewLedger(store, locks, nil, pub, nil)

	req, err := store.Create(ctx, request.CreateCriteria{
		PatientRef:    "PT-1",
		OriginID:      "f-origin",
		DestinationID: "f-dest",
		Level:         model.LevelALS,
		Priority:      model.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	b, err := ledger.Submit(ctx, bid.SubmitInput{
		RequestID: req.ID,
		AgencyID:  "a1",
		UnitID:    "u1",
		UnitType:  model.LevelALS,
		Amount:    500,
	})
	if err != nil {
		t.Fatalf("submit bid: %v", err)
	}
	if _, ok := col.waitFor(string(notify.EventBidSubmitted), 5*time.Second); !ok {
		t.Fatalf("bid_submitted notification never arrived")
	}

	if err := ledger.Accept(ctx, b.ID, "e2e"); err != nil {
		t.Fatalf("accept bid: %v", err)
	}
	ns, ok := col.waitFor(string(notify.EventBidAccepted), 5*time.Second)
	if !ok {
		t.Fatalf("bid_accepted notification never arrived")
	}
	if ns[0].RequestID != req.ID || ns[0].BidID != b.ID || ns[0].AgencyID != "a1" {
		t.Fatalf("unexpected notification payload: %+v", ns[0])
	}

	got, err := store.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if got.Status != model.RequestScheduled {
		t.Fatalf("request status = %s, want %s", got.Status, model.RequestScheduled)
	}
}
