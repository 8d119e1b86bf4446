package partyv1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SessionServiceName is the fully qualified gRPC service name
const SessionServiceName = "party.v1alpha1.SessionService"

const (
	SessionService_CreateSession_FullMethodName     = "/" + SessionServiceName + "/CreateSession"
	SessionService_GetSession_FullMethodName        = "/" + SessionServiceName + "/GetSession"
	SessionService_ListSessions_FullMethodName      = "/" + SessionServiceName + "/ListSessions"
	SessionService_SubmitAction_FullMethodName      = "/" + SessionServiceName + "/SubmitAction"
	SessionService_TakeCompanionTurn_FullMethodName = "/" + SessionServiceName + "/TakeCompanionTurn"
	SessionService_RollDice_FullMethodName          = "/" + SessionServiceName + "/RollDice"
	SessionService_EnqueueVoice_FullMethodName      = "/" + SessionServiceName + "/EnqueueVoice"
	SessionService_ReportPlayback_FullMethodName    = "/" + SessionServiceName + "/ReportPlayback"
	SessionService_SetPlayback_FullMethodName       = "/" + SessionServiceName + "/SetPlayback"
	SessionService_SetVoiceMode_FullMethodName      = "/" + SessionServiceName + "/SetVoiceMode"
	SessionService_EndSession_FullMethodName        = "/" + SessionServiceName + "/EndSession"
)

// SessionServiceServer is the server API for SessionService
type SessionServiceServer interface {
	CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error)
	GetSession(context.Context, *GetSessionRequest) (*GetSessionResponse, error)
	ListSessions(context.Context, *ListSessionsRequest) (*ListSessionsResponse, error)
	SubmitAction(context.Context, *SubmitActionRequest) (*TurnResponse, error)
	TakeCompanionTurn(context.Context, *TakeCompanionTurnRequest) (*TurnResponse, error)
	RollDice(context.Context, *RollDiceRequest) (*RollDiceResponse, error)
	EnqueueVoice(context.Context, *EnqueueVoiceRequest) (*EnqueueVoiceResponse, error)
	ReportPlayback(context.Context, *ReportPlaybackRequest) (*ReportPlaybackResponse, error)
	SetPlayback(context.Context, *SetPlaybackRequest) (*SetPlaybackResponse, error)
	SetVoiceMode(context.Context, *SetVoiceModeRequest) (*SetVoiceModeResponse, error)
	EndSession(context.Context, *EndSessionRequest) (*EndSessionResponse, error)
}

// UnimplementedSessionServiceServer answers every call with Unimplemented
type UnimplementedSessionServiceServer struct{}

func (UnimplementedSessionServiceServer) CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSession not implemented")
}

func (UnimplementedSessionServiceServer) GetSession(context.Context, *GetSessionRequest) (*GetSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSession not implemented")
}

func (UnimplementedSessionServiceServer) ListSessions(context.Context, *ListSessionsRequest) (*ListSessionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSessions not implemented")
}

func (UnimplementedSessionServiceServer) SubmitAction(context.Context, *SubmitActionRequest) (*TurnResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitAction not implemented")
}

func (UnimplementedSessionServiceServer) TakeCompanionTurn(context.Context, *TakeCompanionTurnRequest) (*TurnResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TakeCompanionTurn not implemented")
}

func (UnimplementedSessionServiceServer) RollDice(context.Context, *RollDiceRequest) (*RollDiceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RollDice not implemented")
}

func (UnimplementedSessionServiceServer) EnqueueVoice(context.Context, *EnqueueVoiceRequest) (*EnqueueVoiceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method EnqueueVoice not implemented")
}

func (UnimplementedSessionServiceServer) ReportPlayback(context.Context, *ReportPlaybackRequest) (*ReportPlaybackResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReportPlayback not implemented")
}

func (UnimplementedSessionServiceServer) SetPlayback(context.Context, *SetPlaybackRequest) (*SetPlaybackResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetPlayback not implemented")
}

func (UnimplementedSessionServiceServer) SetVoiceMode(context.Context, *SetVoiceModeRequest) (*SetVoiceModeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetVoiceMode not implemented")
}

func (UnimplementedSessionServiceServer) EndSession(context.Context, *EndSessionRequest) (*EndSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method EndSession not implemented")
}

// SessionService_ServiceDesc describes SessionService to grpc.Server
var SessionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: SessionServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(SessionServiceName, "CreateSession", SessionServiceServer.CreateSession),
		unary(SessionServiceName, "GetSession", SessionServiceServer.GetSession),
		unary(SessionServiceName, "ListSessions", SessionServiceServer.ListSessions),
		unary(SessionServiceName, "SubmitAction", SessionServiceServer.SubmitAction),
		unary(SessionServiceName, "TakeCompanionTurn", SessionServiceServer.TakeCompanionTurn),
		unary(SessionServiceName, "RollDice", SessionServiceServer.RollDice),
		unary(SessionServiceName, "EnqueueVoice", SessionServiceServer.EnqueueVoice),
		unary(SessionServiceName, "ReportPlayback", SessionServiceServer.ReportPlayback),
		unary(SessionServiceName, "SetPlayback", SessionServiceServer.SetPlayback),
		unary(SessionServiceName, "SetVoiceMode", SessionServiceServer.SetVoiceMode),
		unary(SessionServiceName, "EndSession", SessionServiceServer.EndSession),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterSessionServiceServer registers srv with s
func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionService_ServiceDesc, srv)
}

// SessionServiceClient is the client API for SessionService
type SessionServiceClient interface {
	CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error)
	GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*GetSessionResponse, error)
	ListSessions(ctx context.Context, in *ListSessionsRequest, opts ...grpc.CallOption) (*ListSessionsResponse, error)
	SubmitAction(ctx context.Context, in *SubmitActionRequest, opts ...grpc.CallOption) (*TurnResponse, error)
	TakeCompanionTurn(ctx context.Context, in *TakeCompanionTurnRequest, opts ...grpc.CallOption) (*TurnResponse, error)
	RollDice(ctx context.Context, in *RollDiceRequest, opts ...grpc.CallOption) (*RollDiceResponse, error)
	EnqueueVoice(ctx context.Context, in *EnqueueVoiceRequest, opts ...grpc.CallOption) (*EnqueueVoiceResponse, error)
	ReportPlayback(ctx context.Context, in *ReportPlaybackRequest, opts ...grpc.CallOption) (*ReportPlaybackResponse, error)
	SetPlayback(ctx context.Context, in *SetPlaybackRequest, opts ...grpc.CallOption) (*SetPlaybackResponse, error)
	SetVoiceMode(ctx context.Context, in *SetVoiceModeRequest, opts ...grpc.CallOption) (*SetVoiceModeResponse, error)
	EndSession(ctx context.Context, in *EndSessionRequest, opts ...grpc.CallOption) (*EndSessionResponse, error)
}

type sessionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSessionServiceClient returns a client that speaks the json codec over cc
func NewSessionServiceClient(cc grpc.ClientConnInterface) SessionServiceClient {
	return &sessionServiceClient{cc: cc}
}

func (c *sessionServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error) {
	return invoke[CreateSessionResponse](ctx, c.cc, SessionService_CreateSession_FullMethodName, in, opts)
}

func (c *sessionServiceClient) GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*GetSessionResponse, error) {
	return invoke[GetSessionResponse](ctx, c.cc, SessionService_GetSession_FullMethodName, in, opts)
}

func (c *sessionServiceClient) ListSessions(ctx context.Context, in *ListSessionsRequest, opts ...grpc.CallOption) (*ListSessionsResponse, error) {
	return invoke[ListSessionsResponse](ctx, c.cc, SessionService_ListSessions_FullMethodName, in, opts)
}

func (c *sessionServiceClient) SubmitAction(ctx context.Context, in *SubmitActionRequest, opts ...grpc.CallOption) (*TurnResponse, error) {
	return invoke[TurnResponse](ctx, c.cc, SessionService_SubmitAction_FullMethodName, in, opts)
}

func (c *sessionServiceClient) TakeCompanionTurn(ctx context.Context, in *TakeCompanionTurnRequest, opts ...grpc.CallOption) (*TurnResponse, error) {
	return invoke[TurnResponse](ctx, c.cc, SessionService_TakeCompanionTurn_FullMethodName, in, opts)
}

func (c *sessionServiceClient) RollDice(ctx context.Context, in *RollDiceRequest, opts ...grpc.CallOption) (*RollDiceResponse, error) {
	return invoke[RollDiceResponse](ctx, c.cc, SessionService_RollDice_FullMethodName, in, opts)
}

func (c *sessionServiceClient) EnqueueVoice(ctx context.Context, in *EnqueueVoiceRequest, opts ...grpc.CallOption) (*EnqueueVoiceResponse, error) {
	return invoke[EnqueueVoiceResponse](ctx, c.cc, SessionService_EnqueueVoice_FullMethodName, in, opts)
}

func (c *sessionServiceClient) ReportPlayback(ctx context.Context, in *ReportPlaybackRequest, opts ...grpc.CallOption) (*ReportPlaybackResponse, error) {
	return invoke[ReportPlaybackResponse](ctx, c.cc, SessionService_ReportPlayback_FullMethodName, in, opts)
}

func (c *sessionServiceClient) SetPlayback(ctx context.Context, in *SetPlaybackRequest, opts ...grpc.CallOption) (*SetPlaybackResponse, error) {
	return invoke[SetPlaybackResponse](ctx, c.cc, SessionService_SetPlayback_FullMethodName, in, opts)
}

func (c *sessionServiceClient) SetVoiceMode(ctx context.Context, in *SetVoiceModeRequest, opts ...grpc.CallOption) (*SetVoiceModeResponse, error) {
	return invoke[SetVoiceModeResponse](ctx, c.cc, SessionService_SetVoiceMode_FullMethodName, in, opts)
}

func (c *sessionServiceClient) EndSession(ctx context.Context, in *EndSessionRequest, opts ...grpc.CallOption) (*EndSessionResponse, error) {
	return invoke[EndSessionResponse](ctx, c.cc, SessionService_EndSession_FullMethodName, in, opts)
}
