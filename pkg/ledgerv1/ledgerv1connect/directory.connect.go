package ledgerv1connect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/ledgerv1"
)

// DirectoryServiceName is the fully-qualified name of the DirectoryService service.
const DirectoryServiceName = "splitledger.v1.DirectoryService"

// Procedure paths, relative to the server root.
const (
	DirectoryServiceCreateUserProcedure      = "/splitledger.v1.DirectoryService/CreateUser"
	DirectoryServiceGetUserProcedure         = "/splitledger.v1.DirectoryService/GetUser"
	DirectoryServiceCreateGroupProcedure     = "/splitledger.v1.DirectoryService/CreateGroup"
	DirectoryServiceGetGroupProcedure        = "/splitledger.v1.DirectoryService/GetGroup"
	DirectoryServiceAddGroupMembersProcedure = "/splitledger.v1.DirectoryService/AddGroupMembers"
)

// DirectoryServiceClient is a client for the splitledger.v1.DirectoryService service.
type DirectoryServiceClient interface {
	CreateUser(context.Context, *connect.Request[ledgerv1.CreateUserRequest]) (*connect.Response[ledgerv1.CreateUserResponse], error)
	GetUser(context.Context, *connect.Request[ledgerv1.GetUserRequest]) (*connect.Response[ledgerv1.GetUserResponse], error)
	CreateGroup(context.Context, *connect.Request[ledgerv1.CreateGroupRequest]) (*connect.Response[ledgerv1.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[ledgerv1.GetGroupRequest]) (*connect.Response[ledgerv1.GetGroupResponse], error)
	AddGroupMembers(context.Context, *connect.Request[ledgerv1.AddGroupMembersRequest]) (*connect.Response[ledgerv1.AddGroupMembersResponse], error)
}

// NewDirectoryServiceClient constructs a client for the splitledger.v1.DirectoryService service.
// Messages are encoded as JSON; baseURL is the server root, e.g.
// http://localhost:8080.
func NewDirectoryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DirectoryServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &directoryServiceClient{
		createUser: connect.NewClient[ledgerv1.CreateUserRequest, ledgerv1.CreateUserResponse](
			httpClient,
			baseURL+DirectoryServiceCreateUserProcedure,
			opts...,
		),
		getUser: connect.NewClient[ledgerv1.GetUserRequest, ledgerv1.GetUserResponse](
			httpClient,
			baseURL+DirectoryServiceGetUserProcedure,
			opts...,
		),
		createGroup: connect.NewClient[ledgerv1.CreateGroupRequest, ledgerv1.CreateGroupResponse](
			httpClient,
			baseURL+DirectoryServiceCreateGroupProcedure,
			opts...,
		),
		getGroup: connect.NewClient[ledgerv1.GetGroupRequest, ledgerv1.GetGroupResponse](
			httpClient,
			baseURL+DirectoryServiceGetGroupProcedure,
			opts...,
		),
		addGroupMembers: connect.NewClient[ledgerv1.AddGroupMembersRequest, ledgerv1.AddGroupMembersResponse](
			httpClient,
			baseURL+DirectoryServiceAddGroupMembersProcedure,
			opts...,
		),
	}
}

type directoryServiceClient struct {
	createUser      *connect.Client[ledgerv1.CreateUserRequest, ledgerv1.CreateUserResponse]
	getUser         *connect.Client[ledgerv1.GetUserRequest, ledgerv1.GetUserResponse]
	createGroup     *connect.Client[ledgerv1.CreateGroupRequest, ledgerv1.CreateGroupResponse]
	getGroup        *connect.Client[ledgerv1.GetGroupRequest, ledgerv1.GetGroupResponse]
	addGroupMembers *connect.Client[ledgerv1.AddGroupMembersRequest, ledgerv1.AddGroupMembersResponse]
}

func (c *directoryServiceClient) CreateUser(ctx context.Context, req *connect.Request[ledgerv1.CreateUserRequest]) (*connect.Response[ledgerv1.CreateUserResponse], error) {
	return c.createUser.CallUnary(ctx, req)
}

func (c *directoryServiceClient) GetUser(ctx context.Context, req *connect.Request[ledgerv1.GetUserRequest]) (*connect.Response[ledgerv1.GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

func (c *directoryServiceClient) CreateGroup(ctx context.Context, req *connect.Request[ledgerv1.CreateGroupRequest]) (*connect.Response[ledgerv1.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *directoryServiceClient) GetGroup(ctx context.Context, req *connect.Request[ledgerv1.GetGroupRequest]) (*connect.Response[ledgerv1.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *directoryServiceClient) AddGroupMembers(ctx context.Context, req *connect.Request[ledgerv1.AddGroupMembersRequest]) (*connect.Response[ledgerv1.AddGroupMembersResponse], error) {
	return c.addGroupMembers.CallUnary(ctx, req)
}

// DirectoryServiceHandler is implemented by the server side of the splitledger.v1.DirectoryService service.
// DirectoryService manages the users and groups the ledger refers to.
type DirectoryServiceHandler interface {
	CreateUser(context.Context, *connect.Request[ledgerv1.CreateUserRequest]) (*connect.Response[ledgerv1.CreateUserResponse], error)
	GetUser(context.Context, *connect.Request[ledgerv1.GetUserRequest]) (*connect.Response[ledgerv1.GetUserResponse], error)
	CreateGroup(context.Context, *connect.Request[ledgerv1.CreateGroupRequest]) (*connect.Response[ledgerv1.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[ledgerv1.GetGroupRequest]) (*connect.Response[ledgerv1.GetGroupResponse], error)
	AddGroupMembers(context.Context, *connect.Request[ledgerv1.AddGroupMembersRequest]) (*connect.Response[ledgerv1.AddGroupMembersResponse], error)
}

// NewDirectoryServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewDirectoryServiceHandler(svc DirectoryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	createUserHandler := connect.NewUnaryHandler(
		DirectoryServiceCreateUserProcedure,
		svc.CreateUser,
		opts...,
	)
	getUserHandler := connect.NewUnaryHandler(
		DirectoryServiceGetUserProcedure,
		svc.GetUser,
		opts...,
	)
	createGroupHandler := connect.NewUnaryHandler(
		DirectoryServiceCreateGroupProcedure,
		svc.CreateGroup,
		opts...,
	)
	getGroupHandler := connect.NewUnaryHandler(
		DirectoryServiceGetGroupProcedure,
		svc.GetGroup,
		opts...,
	)
	addGroupMembersHandler := connect.NewUnaryHandler(
		DirectoryServiceAddGroupMembersProcedure,
		svc.AddGroupMembers,
		opts...,
	)
	return "/splitledger.v1.DirectoryService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case DirectoryServiceCreateUserProcedure:
			createUserHandler.ServeHTTP(w, r)
		case DirectoryServiceGetUserProcedure:
			getUserHandler.ServeHTTP(w, r)
		case DirectoryServiceCreateGroupProcedure:
			createGroupHandler.ServeHTTP(w, r)
		case DirectoryServiceGetGroupProcedure:
			getGroupHandler.ServeHTTP(w, r)
		case DirectoryServiceAddGroupMembersProcedure:
			addGroupMembersHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedDirectoryServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedDirectoryServiceHandler struct{}

func (UnimplementedDirectoryServiceHandler) CreateUser(context.Context, *connect.Request[ledgerv1.CreateUserRequest]) (*connect.Response[ledgerv1.CreateUserResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.CreateUser is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) GetUser(context.Context, *connect.Request[ledgerv1.GetUserRequest]) (*connect.Response[ledgerv1.GetUserResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.GetUser is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) CreateGroup(context.Context, *connect.Request[ledgerv1.CreateGroupRequest]) (*connect.Response[ledgerv1.CreateGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.CreateGroup is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) GetGroup(context.Context, *connect.Request[ledgerv1.GetGroupRequest]) (*connect.Response[ledgerv1.GetGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.GetGroup is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) AddGroupMembers(context.Context, *connect.Request[ledgerv1.AddGroupMembersRequest]) (*connect.Response[ledgerv1.AddGroupMembersResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.AddGroupMembers is not implemented"))
}
