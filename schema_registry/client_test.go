package schema_registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/nakji-network/connector-go/kafka"
	"github.com/nakji-network/connector-go/logger"
	"github.com/nakji-network/connector-go/observability"
)

type recordingObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (o *recordingObserver) ObserveOperation(ctx observability.OperationContext) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, ctx)
}

func (o *recordingObserver) operations() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, 0, len(o.ops))
	for _, op := range o.ops {
		names = append(names, op.Operation)
	}
	return names
}

func (o *recordingObserver) last() observability.OperationContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ops[len(o.ops)-1]
}

// registryServer records every register request and answers with status.
type registryServer struct {
	*httptest.Server
	hits    atomic.Int32
	mu      sync.Mutex
	bodies  [][]byte
	headers []http.Header
}

func newRegistryServer(t *testing.T, status int, reply string) *registryServer {
	t.Helper()
	s := &registryServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != RegisterPath {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.bodies = append(s.bodies, body)
		s.headers = append(s.headers, r.Header.Clone())
		s.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(s.Close)
	return s
}

func TestRegisterSchemas_EndToEnd(t *testing.T) {
	srv := newRegistryServer(t, http.StatusOK, `{"registered":2}`)
	obs := &recordingObserver{}
	client, err := NewClient(Config{Host: srv.URL, Resolver: ResolverRegistry})
	require.NoError(t, err)
	client.WithObserver(obs)

	err = client.RegisterSchemas(context.Background(), kafka.EnvProd, kafka.MsgTypeCommand, chainTopics(t, kafka.EnvProd))
	require.NoError(t, err)

	require.Equal(t, int32(1), srv.hits.Load())
	assert.Equal(t, "application/json", srv.headers[0].Get("Content-Type"))

	var records []Record
	require.NoError(t, json.Unmarshal(srv.bodies[0], &records))
	require.Len(t, records, 2)
	assert.Equal(t, "nakji.ethereum.0_0_0.chain_Block", records[0].Topic)
	assert.Equal(t, "nakji.chain.Block", records[0].ProtoMsg)
	assert.Equal(t, "nakji.ethereum.0_0_0.chain_Transaction", records[1].Topic)
	assert.Equal(t, "nakji.chain.Transaction", records[1].ProtoMsg)
	for _, r := range records {
		assert.Equal(t, kafka.MsgTypeCommand, r.MsgType)
		assert.NotEmpty(t, r.Descriptor)
	}

	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(srv.bodies[0], &raw))
	assert.Equal(t, byte('['), raw[0]["descriptor"][0], "descriptor must be a byte array")

	assert.Equal(t, []string{"resolve_descriptor", "resolve_descriptor", "register"}, obs.operations())
	reg := obs.last()
	assert.Equal(t, "schema_registry", reg.Component)
	assert.Equal(t, srv.URL, reg.Resource)
	assert.Equal(t, "cmd", reg.SubResource)
	assert.Equal(t, int64(2), reg.Size)
	assert.NoError(t, reg.Error)
	assert.Equal(t, http.StatusOK, reg.Metadata["status_code"])
}

func TestRegisterSchemas_DevIsNoOp(t *testing.T) {
	srv := newRegistryServer(t, http.StatusOK, "")
	core, logs := observer.New(zap.InfoLevel)
	resolver := &countingResolver{}
	client, err := NewClient(Config{Host: srv.URL})
	require.NoError(t, err)
	client.WithResolver(resolver).WithLogger(logger.NewFromZap(zap.New(core), false))

	err = client.RegisterSchemas(context.Background(), kafka.EnvDev, kafka.MsgTypeCommand, chainTopics(t, kafka.EnvDev))
	require.NoError(t, err)

	assert.Zero(t, srv.hits.Load())
	assert.Zero(t, resolver.calls.Load())
	assert.Equal(t, 1, logs.FilterMessage("Schema registration skipped in dev environment").Len())
}

func TestRegisterSchemas_DevNeedsNoHost(t *testing.T) {
	client, err := NewClient(Config{})
	require.NoError(t, err)
	assert.NoError(t, client.RegisterSchemas(context.Background(), kafka.EnvDev, kafka.MsgTypeFact, nil))
}

func TestRegisterSchemas_NonSuccessStatus(t *testing.T) {
	srv := newRegistryServer(t, http.StatusInternalServerError, "registry exploded")
	core, logs := observer.New(zap.InfoLevel)
	obs := &recordingObserver{}
	client, err := NewClient(Config{Host: srv.URL + "/"})
	require.NoError(t, err)
	client.WithResolver(staticResolver{}).WithObserver(obs).WithLogger(logger.NewFromZap(zap.New(core), false))

	err = client.RegisterSchemas(context.Background(), kafka.EnvStaging, kafka.MsgTypeCommand, chainTopics(t, kafka.EnvStaging))
	require.ErrorIs(t, err, ErrRegistrationTransport)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "registry exploded")

	responses := logs.FilterMessage("Schema registry response").All()
	require.Len(t, responses, 1)
	assert.Equal(t, "registry exploded", responses[0].ContextMap()["body"])
	assert.Equal(t, 1, logs.FilterMessage("Schema registration failed").Len())

	reg := obs.last()
	assert.Equal(t, "register", reg.Operation)
	assert.ErrorIs(t, reg.Error, ErrRegistrationTransport)
	assert.Equal(t, http.StatusInternalServerError, reg.Metadata["status_code"])
}

func TestRegisterSchemas_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := srv.URL
	srv.Close()

	client, err := NewClient(Config{Host: host})
	require.NoError(t, err)
	client.WithResolver(staticResolver{})

	err = client.RegisterSchemas(context.Background(), kafka.EnvProd, kafka.MsgTypeCommand, chainTopics(t, kafka.EnvProd))
	assert.ErrorIs(t, err, ErrRegistrationTransport)
}

func TestRegisterSchemas_ResolverFailureSkipsRequest(t *testing.T) {
	srv := newRegistryServer(t, http.StatusOK, "")
	obs := &recordingObserver{}
	client, err := NewClient(Config{Host: srv.URL})
	require.NoError(t, err)
	client.WithResolver(staticResolver{err: ErrDescriptorFileNotFound}).WithObserver(obs)

	err = client.RegisterSchemas(context.Background(), kafka.EnvProd, kafka.MsgTypeCommand, chainTopics(t, kafka.EnvProd))
	require.ErrorIs(t, err, ErrDescriptorFileNotFound)
	assert.Zero(t, srv.hits.Load())
	assert.Equal(t, []string{"resolve_descriptor", "register"}, obs.operations())
}

func TestRegisterSchemas_MissingHost(t *testing.T) {
	client, err := NewClient(Config{})
	require.NoError(t, err)

	err = client.RegisterSchemas(context.Background(), kafka.EnvProd, kafka.MsgTypeFact, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRegisterSchemas_BasicAuth(t *testing.T) {
	srv := newRegistryServer(t, http.StatusCreated, "")
	client, err := NewClient(Config{Host: srv.URL, Username: "nakji", Password: "secret"})
	require.NoError(t, err)
	client.WithResolver(staticResolver{})

	require.NoError(t, client.RegisterSchemas(context.Background(), kafka.EnvProd, kafka.MsgTypeFact, chainTopics(t, kafka.EnvProd)))

	req := &http.Request{Header: srv.headers[0]}
	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "nakji", user)
	assert.Equal(t, "secret", pass)
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{Host: "http://registry:8080/"})
	require.NoError(t, err)
	assert.Equal(t, "http://registry:8080", client.Host())
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.IsType(t, ProtocResolver{}, client.resolver)

	client, err = NewClient(Config{Resolver: "Registry"})
	require.NoError(t, err)
	assert.IsType(t, RegistryResolver{}, client.resolver)

	_, err = NewClient(Config{Resolver: "buf"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

type countingResolver struct {
	calls atomic.Int32
}

func (r *countingResolver) Resolve(ctx context.Context, desc protoreflect.MessageDescriptor) ([]byte, error) {
	r.calls.Add(1)
	return staticResolver{}.Resolve(ctx, desc)
}
