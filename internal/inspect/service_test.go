package inspect

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/internal/logging"
	"github.com/signalsfoundry/orrery/internal/observability"
	"github.com/signalsfoundry/orrery/kb"
	"github.com/signalsfoundry/orrery/model"
)

// fakeScene hits whatever body is configured and records calls.
type fakeScene struct {
	frame    *core.Frame
	hit      *core.Selection
	paused   bool
	nav      string
	lastVP   core.Viewport
	selected []string
}

func (f *fakeScene) Snapshot() *core.Frame { return f.frame }

func (f *fakeScene) Pick(_ context.Context, _, _ float64, vp core.Viewport) (core.Selection, bool) {
	f.lastVP = vp
	if f.hit == nil {
		return core.Selection{}, false
	}
	return *f.hit, true
}

func (f *fakeScene) Select(name string) (core.Selection, error) {
	f.selected = append(f.selected, name)
	if name != "Alderaan" {
		return core.Selection{}, fmt.Errorf("lookup %q: %w", name, kb.ErrBodyNotFound)
	}
	return core.Selection{Name: name, Kind: model.KindPlanet}, nil
}

func (f *fakeScene) SetPaused(p bool) { f.paused = p }
func (f *fakeScene) Paused() bool     { return f.paused }

func (f *fakeScene) ToggleNavigation() string {
	if f.nav == core.NavFly {
		f.nav = core.NavOrbit
	} else {
		f.nav = core.NavFly
	}
	return f.nav
}

func TestServerNotReady(t *testing.T) {
	s := NewServer(nil, nil)
	_, err := s.Snapshot(context.Background(), &emptypb.Empty{})
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("Snapshot without scene code = %v, want Unavailable", status.Code(err))
	}

	s = NewServer(&fakeScene{}, nil)
	if _, err := s.Snapshot(context.Background(), &emptypb.Empty{}); status.Code(err) != codes.Unavailable {
		t.Fatalf("Snapshot without frame code = %v, want Unavailable", status.Code(err))
	}
}

func TestServerPickValidatesViewport(t *testing.T) {
	s := NewServer(&fakeScene{}, logging.Noop())
	req, err := structpb.NewStruct(map[string]interface{}{"x": 1, "y": 1, "width": 0, "height": 10})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	if _, err := s.Pick(context.Background(), req); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("Pick code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestServerPickHitAndMiss(t *testing.T) {
	scene := &fakeScene{}
	s := NewServer(scene, logging.Noop())
	req, err := structpb.NewStruct(map[string]interface{}{"x": 10, "y": 20, "width": 800, "height": 600})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}

	resp, err := s.Pick(context.Background(), req)
	if err != nil {
		t.Fatalf("Pick error: %v", err)
	}
	if resp.GetFields()["hit"].GetBoolValue() {
		t.Fatalf("expected a miss")
	}
	if _, ok := resp.GetFields()["selection"]; ok {
		t.Fatalf("miss should carry no selection")
	}
	if scene.lastVP != (core.Viewport{Width: 800, Height: 600}) {
		t.Fatalf("viewport = %+v", scene.lastVP)
	}

	scene.hit = &core.Selection{
		Name: "Coruscant",
		Kind: model.KindPlanet,
		Display: core.SelectionDisplay{
			Distance: "32.00", Speed: "1.000", Inclination: "20.0°", Color: "#cad7ff",
		},
		RayDistance: 3,
	}
	resp, err = s.Pick(context.Background(), req)
	if err != nil {
		t.Fatalf("Pick error: %v", err)
	}
	sel := resp.GetFields()["selection"].GetStructValue().GetFields()
	if sel["name"].GetStringValue() != "Coruscant" || sel["inclination"].GetStringValue() != "20.0°" {
		t.Fatalf("selection = %v", sel)
	}
	if sel["kind"].GetStringValue() != "planet" {
		t.Fatalf("kind = %q", sel["kind"].GetStringValue())
	}
}

type inspectEnv struct {
	client    *Client
	collector *observability.InspectCollector
	registry  *prometheus.Registry
}

func newInspectEnv(t *testing.T, scene Scene) *inspectEnv {
	t.Helper()
	return newLoggedInspectEnv(t, scene, logging.Noop())
}

func newLoggedInspectEnv(t *testing.T, scene Scene, log logging.Logger) *inspectEnv {
	t.Helper()

	reg := prometheus.NewRegistry()
	collector, err := observability.NewInspectCollector(reg)
	if err != nil {
		t.Fatalf("NewInspectCollector: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	server := NewGRPCServer(scene, log, collector)
	go func() {
		_ = server.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
	})

	return &inspectEnv{client: NewClient(conn), collector: collector, registry: reg}
}

func TestEndToEndInspector(t *testing.T) {
	sc, err := core.BuildScene(context.Background(), core.DefaultTable())
	if err != nil {
		t.Fatalf("BuildScene error: %v", err)
	}
	engine := core.NewEngine(sc)
	engine.Advance(context.Background(), 100*time.Millisecond)

	env := newInspectEnv(t, engine)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := env.client.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	fields := snap.GetFields()
	if n := len(fields["bodies"].GetListValue().GetValues()); n != 13 {
		t.Fatalf("snapshot bodies = %d, want 13", n)
	}
	if fields["navigation"].GetStringValue() != core.NavOrbit {
		t.Fatalf("navigation = %q", fields["navigation"].GetStringValue())
	}
	first := fields["bodies"].GetListValue().GetValues()[0].GetStructValue().GetFields()
	if first["name"].GetStringValue() != "Betelguese" || first["kind"].GetStringValue() != "star" {
		t.Fatalf("first body = %v", first)
	}

	paused, err := env.client.SetPaused(ctx, true)
	if err != nil || !paused || !engine.Paused() {
		t.Fatalf("SetPaused = %v, %v; engine paused=%v", paused, err, engine.Paused())
	}

	mode, err := env.client.ToggleNavigation(ctx)
	if err != nil || mode != core.NavFly {
		t.Fatalf("ToggleNavigation = %q, %v", mode, err)
	}

	sel, err := env.client.Select(ctx, "Selunara")
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if sel.GetFields()["distance"].GetStringValue() != "9.60" {
		t.Fatalf("Selunara distance = %v", sel.GetFields()["distance"])
	}
	if got, ok := engine.Selected(); !ok || got.Name != "Selunara" {
		t.Fatalf("engine selection = %+v, %v", got, ok)
	}

	_, err = env.client.Select(ctx, "Rigel")
	if status.Code(err) != codes.NotFound {
		t.Fatalf("Select(Rigel) code = %v, want NotFound", status.Code(err))
	}
	_, err = env.client.Select(ctx, "")
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("Select(\"\") code = %v, want InvalidArgument", status.Code(err))
	}

	if got := testutil.ToFloat64(env.collector.RPCRequests.WithLabelValues("SceneInspector", "Select", "NotFound")); got != 1 {
		t.Fatalf("NotFound selects = %v, want 1", got)
	}
	if got := testutil.ToFloat64(env.collector.RPCRequests.WithLabelValues("SceneInspector", "Snapshot", "OK")); got != 1 {
		t.Fatalf("snapshots = %v, want 1", got)
	}
}

func TestEndToEndPickMiss(t *testing.T) {
	env := newInspectEnv(t, &fakeScene{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := env.client.Pick(ctx, 1, 1, 100, 100)
	if err != nil {
		t.Fatalf("Pick error: %v", err)
	}
	if resp.GetFields()["hit"].GetBoolValue() {
		t.Fatalf("expected miss")
	}

	_, err = env.client.Pick(ctx, 1, 1, 0, 0)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("empty viewport code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestRegisterServiceUsesWellKnownTypes(t *testing.T) {
	server := grpc.NewServer()
	RegisterSceneInspectorServer(server, NewServer(&fakeScene{}, nil))
	info, ok := server.GetServiceInfo()[ServiceName]
	if !ok {
		t.Fatalf("service %s not registered", ServiceName)
	}
	if len(info.Methods) != 5 {
		t.Fatalf("methods = %d, want 5", len(info.Methods))
	}
}

func TestCallIDEchoedAndLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "debug", Format: "json", Output: &buf})
	env := newLoggedInspectEnv(t, &fakeScene{}, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var header metadata.MD
	callCtx := metadata.AppendToOutgoingContext(ctx, CallIDHeader, "viewer-42")
	if _, err := env.client.SetPaused(callCtx, true, grpc.Header(&header)); err != nil {
		t.Fatalf("SetPaused error: %v", err)
	}
	if got := header.Get(CallIDHeader); len(got) != 1 || got[0] != "viewer-42" {
		t.Fatalf("echoed call id = %v", got)
	}

	if _, err := env.client.Select(ctx, "Rigel"); status.Code(err) != codes.NotFound {
		t.Fatalf("Select(Rigel) code = %v, want NotFound", status.Code(err))
	}

	out := buf.String()
	for _, want := range []string{
		`"rpc":"SetPaused","call_id":"viewer-42","paused":true`,
		`"msg":"inspect call","rpc":"SetPaused","call_id":"viewer-42","code":"OK"`,
		`"msg":"inspect call failed","rpc":"Select","call_id":"`,
		`"code":"NotFound"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("log lacks %s:\n%s", want, out)
		}
	}
}
