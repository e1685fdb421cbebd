// Package inspect exposes a running engine over gRPC. The service has no
// generated stubs: requests and responses are protobuf well-known types and
// the service descriptor is declared here.
package inspect

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/internal/logging"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "orrery.inspect.v1.SceneInspector"

// Scene is the part of *core.Engine the inspector drives.
type Scene interface {
	Snapshot() *core.Frame
	Pick(ctx context.Context, px, py float64, vp core.Viewport) (core.Selection, bool)
	Select(name string) (core.Selection, error)
	SetPaused(p bool)
	Paused() bool
	ToggleNavigation() string
}

// SceneInspectorServer is the server API for the SceneInspector service.
type SceneInspectorServer interface {
	Snapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Pick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPaused(context.Context, *wrapperspb.BoolValue) (*wrapperspb.BoolValue, error)
	ToggleNavigation(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Select(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc describes SceneInspector for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SceneInspectorServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Snapshot", SceneInspectorServer.Snapshot),
		unary("Pick", SceneInspectorServer.Pick),
		unary("SetPaused", SceneInspectorServer.SetPaused),
		unary("ToggleNavigation", SceneInspectorServer.ToggleNavigation),
		unary("Select", SceneInspectorServer.Select),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orrery/inspect/v1/inspect.proto",
}

// RegisterSceneInspectorServer registers srv on s.
func RegisterSceneInspectorServer(s grpc.ServiceRegistrar, srv SceneInspectorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(SceneInspectorServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SceneInspectorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(SceneInspectorServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Server implements SceneInspectorServer on top of a Scene.
type Server struct {
	scene Scene
	log   logging.Logger
}

// NewServer binds the inspector to scene.
func NewServer(scene Scene, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{scene: scene, log: log}
}

func (s *Server) ensureReady() error {
	if s == nil || s.scene == nil {
		return ToStatusError(ErrNotReady)
	}
	return nil
}

// Snapshot returns the most recent frame.
func (s *Server) Snapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	f := s.scene.Snapshot()
	if f == nil {
		return nil, ToStatusError(ErrNotReady)
	}
	out, err := structpb.NewStruct(frameToMap(f))
	if err != nil {
		return nil, ToStatusError(err)
	}
	return out, nil
}

// Pick casts a ray through the pointer position x, y of a viewport of the
// given width and height.
func (s *Server) Pick(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	fields := req.GetFields()
	vp := core.Viewport{
		Width:  fields["width"].GetNumberValue(),
		Height: fields["height"].GetNumberValue(),
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil, ToStatusError(fmt.Errorf("%w: viewport %vx%v", ErrInvalidRequest, vp.Width, vp.Height))
	}
	x, y := fields["x"].GetNumberValue(), fields["y"].GetNumberValue()

	sel, hit := s.scene.Pick(ctx, x, y, vp)
	resp := map[string]interface{}{"hit": hit}
	if hit {
		resp["selection"] = selectionToMap(sel)
		logging.FromContext(ctx, s.log).Debug(ctx, "remote pick", logging.String("body", sel.Name))
	}
	out, err := structpb.NewStruct(resp)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return out, nil
}

// SetPaused sets the pause flag and echoes it back.
func (s *Server) SetPaused(ctx context.Context, req *wrapperspb.BoolValue) (*wrapperspb.BoolValue, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	s.scene.SetPaused(req.GetValue())
	logging.FromContext(ctx, s.log).Info(ctx, "pause changed", logging.Bool("paused", req.GetValue()))
	return wrapperspb.Bool(s.scene.Paused()), nil
}

// ToggleNavigation switches the camera controller and returns its label.
func (s *Server) ToggleNavigation(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	mode := s.scene.ToggleNavigation()
	logging.FromContext(ctx, s.log).Info(ctx, "navigation toggled", logging.String("mode", mode))
	return wrapperspb.String(mode), nil
}

// Select presents a body by name.
func (s *Server) Select(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	name := req.GetValue()
	if name == "" {
		return nil, ToStatusError(fmt.Errorf("%w: body name is required", ErrInvalidRequest))
	}
	sel, err := s.scene.Select(name)
	if err != nil {
		return nil, ToStatusError(err)
	}
	out, err := structpb.NewStruct(selectionToMap(sel))
	if err != nil {
		return nil, ToStatusError(err)
	}
	return out, nil
}

func frameToMap(f *core.Frame) map[string]interface{} {
	bodies := make([]interface{}, 0, len(f.Bodies))
	for _, b := range f.Bodies {
		bodies = append(bodies, map[string]interface{}{
			"name":   b.Name,
			"kind":   b.Kind.String(),
			"radius": b.Radius,
			"color":  b.Color.Hex(),
			"position": map[string]interface{}{
				"x": b.Position.X,
				"y": b.Position.Y,
				"z": b.Position.Z,
			},
		})
	}
	return map[string]interface{}{
		"frame":      float64(f.Index),
		"simTime":    f.SimTime,
		"wallTime":   f.Wall.Seconds(),
		"paused":     f.Paused,
		"navigation": f.Navigation,
		"beltAngle":  f.BeltAngle,
		"bodies":     bodies,
	}
}

func selectionToMap(sel core.Selection) map[string]interface{} {
	return map[string]interface{}{
		"name":        sel.Name,
		"kind":        sel.Kind.String(),
		"distance":    sel.Display.Distance,
		"speed":       sel.Display.Speed,
		"inclination": sel.Display.Inclination,
		"color":       sel.Display.Color,
		"rayDistance": sel.RayDistance,
	}
}
