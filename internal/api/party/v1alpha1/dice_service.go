package partyv1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DiceServiceName is the fully qualified gRPC service name
const DiceServiceName = "party.v1alpha1.DiceService"

const (
	DiceService_RollDice_FullMethodName          = "/" + DiceServiceName + "/RollDice"
	DiceService_GetRollSession_FullMethodName    = "/" + DiceServiceName + "/GetRollSession"
	DiceService_ClearRollSession_FullMethodName  = "/" + DiceServiceName + "/ClearRollSession"
	DiceService_RollAbilityScores_FullMethodName = "/" + DiceServiceName + "/RollAbilityScores"
)

// DiceServiceServer is the server API for DiceService. Rolls made here are
// logged under an entity and context until their TTL runs out.
type DiceServiceServer interface {
	RollDice(context.Context, *LogRollRequest) (*LogRollResponse, error)
	GetRollSession(context.Context, *GetRollSessionRequest) (*GetRollSessionResponse, error)
	ClearRollSession(context.Context, *ClearRollSessionRequest) (*ClearRollSessionResponse, error)
	RollAbilityScores(context.Context, *RollAbilityScoresRequest) (*RollAbilityScoresResponse, error)
}

// UnimplementedDiceServiceServer answers every call with Unimplemented
type UnimplementedDiceServiceServer struct{}

func (UnimplementedDiceServiceServer) RollDice(context.Context, *LogRollRequest) (*LogRollResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RollDice not implemented")
}

func (UnimplementedDiceServiceServer) GetRollSession(context.Context, *GetRollSessionRequest) (*GetRollSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRollSession not implemented")
}

func (UnimplementedDiceServiceServer) ClearRollSession(context.Context, *ClearRollSessionRequest) (*ClearRollSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ClearRollSession not implemented")
}

func (UnimplementedDiceServiceServer) RollAbilityScores(context.Context, *RollAbilityScoresRequest) (*RollAbilityScoresResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RollAbilityScores not implemented")
}

// DiceService_ServiceDesc describes DiceService to grpc.Server
var DiceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DiceServiceName,
	HandlerType: (*DiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(DiceServiceName, "RollDice", DiceServiceServer.RollDice),
		unary(DiceServiceName, "GetRollSession", DiceServiceServer.GetRollSession),
		unary(DiceServiceName, "ClearRollSession", DiceServiceServer.ClearRollSession),
		unary(DiceServiceName, "RollAbilityScores", DiceServiceServer.RollAbilityScores),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterDiceServiceServer registers srv with s
func RegisterDiceServiceServer(s grpc.ServiceRegistrar, srv DiceServiceServer) {
	s.RegisterService(&DiceService_ServiceDesc, srv)
}

// DiceServiceClient is the client API for DiceService
type DiceServiceClient interface {
	RollDice(ctx context.Context, in *LogRollRequest, opts ...grpc.CallOption) (*LogRollResponse, error)
	GetRollSession(ctx context.Context, in *GetRollSessionRequest, opts ...grpc.CallOption) (*GetRollSessionResponse, error)
	ClearRollSession(ctx context.Context, in *ClearRollSessionRequest, opts ...grpc.CallOption) (*ClearRollSessionResponse, error)
	RollAbilityScores(ctx context.Context, in *RollAbilityScoresRequest, opts ...grpc.CallOption) (*RollAbilityScoresResponse, error)
}

type diceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDiceServiceClient returns a client that speaks the json codec over cc
func NewDiceServiceClient(cc grpc.ClientConnInterface) DiceServiceClient {
	return &diceServiceClient{cc: cc}
}

func (c *diceServiceClient) RollDice(ctx context.Context, in *LogRollRequest, opts ...grpc.CallOption) (*LogRollResponse, error) {
	return invoke[LogRollResponse](ctx, c.cc, DiceService_RollDice_FullMethodName, in, opts)
}

func (c *diceServiceClient) GetRollSession(ctx context.Context, in *GetRollSessionRequest, opts ...grpc.CallOption) (*GetRollSessionResponse, error) {
	return invoke[GetRollSessionResponse](ctx, c.cc, DiceService_GetRollSession_FullMethodName, in, opts)
}

func (c *diceServiceClient) ClearRollSession(ctx context.Context, in *ClearRollSessionRequest, opts ...grpc.CallOption) (*ClearRollSessionResponse, error) {
	return invoke[ClearRollSessionResponse](ctx, c.cc, DiceService_ClearRollSession_FullMethodName, in, opts)
}

func (c *diceServiceClient) RollAbilityScores(ctx context.Context, in *RollAbilityScoresRequest, opts ...grpc.CallOption) (*RollAbilityScoresResponse, error) {
	return invoke[RollAbilityScoresResponse](ctx, c.cc, DiceService_RollAbilityScores_FullMethodName, in, opts)
}
