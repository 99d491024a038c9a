package cli

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ananthanir/ethlite/internal/eth/rpc"
	ethtypes "github.com/ananthanir/ethlite/internal/eth/types"
	"github.com/ananthanir/ethlite/internal/output"
	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

const testToken = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

// withCallFlags sets the call flag variables and restores them afterwards.
func withCallFlags(t *testing.T, to, from, block string) {
	t.Helper()
	prevTo, prevFrom, prevBlock, prevRPC := callTo, callFrom, callBlock, callRPC
	t.Cleanup(func() {
		callTo, callFrom, callBlock, callRPC = prevTo, prevFrom, prevBlock, prevRPC
	})
	callTo, callFrom, callBlock, callRPC = to, from, block, ""
}

func TestRunCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockRPCClient(ctrl)

	withCallFlags(t, testToken, "", "latest")
	env := newTestEnv(t, &mockConfigProvider{rpcURL: testNodeURL}, output.FormatJSON)
	withMockClient(env, client)

	data, err := hexutil.Decode(
		"0x70a08231000000000000000000000000" + testRecipient[2:],
	)
	require.NoError(t, err)
	want := rpc.CallMsg{To: ethtypes.MustHexToAddress(testToken), Data: data}
	result := "0x00000000000000000000000000000000000000000000000000000000000003e8"

	client.EXPECT().EthCall(gomock.Any(), want, "latest").Return(result, nil)
	client.EXPECT().URL().Return(testNodeURL).AnyTimes()
	client.EXPECT().Close()

	require.NoError(t, runCall(env.cmd, []string{"balanceOf(address)", testRecipient}))

	var resp CallResponse
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &resp))
	assert.Equal(t, "balanceOf(address)", resp.Signature)
	assert.Equal(t, hexutil.Encode(data), resp.Data)
	assert.Equal(t, result, resp.Result)
	assert.Equal(t, "latest", resp.Block)
}

func TestRunCall_FromAndBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockRPCClient(ctrl)

	withCallFlags(t, testToken, testRecipient, "0x10d4f")
	env := newTestEnv(t, &mockConfigProvider{rpcURL: testNodeURL}, output.FormatText)
	withMockClient(env, client)

	from := ethtypes.MustHexToAddress(testRecipient)
	want := rpc.CallMsg{
		From: &from,
		To:   ethtypes.MustHexToAddress(testToken),
		Data: []byte{0x18, 0x16, 0x0d, 0xdd},
	}

	client.EXPECT().EthCall(gomock.Any(), want, "0x10d4f").Return("0x01", nil)
	client.EXPECT().URL().Return(testNodeURL).AnyTimes()
	client.EXPECT().Close()

	require.NoError(t, runCall(env.cmd, []string{"totalSupply()"}))
	assert.Equal(t, "0x01\n", env.stdout.String())
}

func TestRunCall_NodeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockRPCClient(ctrl)

	withCallFlags(t, testToken, "", "latest")
	env := newTestEnv(t, &mockConfigProvider{rpcURL: testNodeURL}, output.FormatJSON)
	withMockClient(env, client)

	client.EXPECT().EthCall(gomock.Any(), gomock.Any(), "latest").Return("", ethlerr.ErrNetworkError)
	client.EXPECT().URL().Return(testNodeURL).AnyTimes()
	client.EXPECT().Close()

	err := runCall(env.cmd, []string{"totalSupply()"})
	require.ErrorIs(t, err, ethlerr.ErrNetworkError)
	assert.Equal(t, ethlerr.ExitNetwork, ethlerr.ExitCode(err))
}

func TestRunCall_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		to   string
		from string
		args []string
		want error
	}{
		{"bad to", "0x1234", "", []string{"totalSupply()"}, ethlerr.ErrInvalidAddress},
		{"bad from", testToken, "nope", []string{"totalSupply()"}, ethlerr.ErrInvalidAddress},
		{"arity", testToken, "", []string{"balanceOf(address)"}, ethlerr.ErrArityMismatch},
		{"unsupported", testToken, "", []string{"f(uint7)", "1"}, ethlerr.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withCallFlags(t, tt.to, tt.from, "latest")
			env := newTestEnv(t, &mockConfigProvider{rpcURL: testNodeURL}, output.FormatJSON)
			env.cc.WithDialer(func(string, ConfigProvider) (RPCClient, error) {
				t.Fatal("no RPC call expected")
				return nil, nil
			})

			err := runCall(env.cmd, tt.args)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, ethlerr.ExitInput, ethlerr.ExitCode(err))
		})
	}
}

func TestParseAddressFlag(t *testing.T) {
	t.Parallel()

	addr, err := parseAddressFlag("to", testToken)
	require.NoError(t, err)
	assert.Equal(t, testToken, addr.Hex())

	_, err = parseAddressFlag("to", "")
	var ee *ethlerr.EthliteError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "to", ee.Details["flag"])
	assert.NotEmpty(t, ee.Suggestion)
}
