package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/calehh/assembly-app/crypto"
	"github.com/calehh/assembly-app/tx"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

func newClient(url string) (*comethttp.HTTP, error) {
	cli, err := comethttp.New(url, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	return cli, nil
}

// queryApp runs an abci query and returns the raw JSON value.
func queryApp(ctx context.Context, cli *comethttp.HTTP, path string, data []byte) ([]byte, error) {
	res, err := cli.ABCIQuery(ctx, path, data)
	if err != nil {
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, fmt.Errorf("query %s: code %d: %s", path, res.Response.Code, res.Response.Log)
	}
	return res.Response.Value, nil
}

func queryNonce(ctx context.Context, cli *comethttp.HTTP, addr common.Address) (uint64, error) {
	dat, err := queryApp(ctx, cli, "/nonce/"+addr.Hex(), nil)
	if err != nil {
		return 0, err
	}
	var nonce uint64
	if err = json.Unmarshal(dat, &nonce); err != nil {
		return 0, err
	}
	return nonce, nil
}

// signer signs consecutive txs for one key, advancing the nonce locally.
type signer struct {
	args    *txArguments
	key     *crypto.Key
	cli     *comethttp.HTTP
	chainId string
	nonce   uint64
}

func newSigner(cmd *cobra.Command, args *txArguments) (*signer, error) {
	key, err := crypto.LoadKeyFile(args.Key)
	if err != nil {
		return nil, err
	}
	cli, err := newClient(args.Url)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	s := &signer{args: args, key: key, cli: cli, chainId: args.ChainId, nonce: args.Nonce}
	if s.chainId == "" {
		gres, err := cli.Genesis(ctx)
		if err != nil {
			return nil, fmt.Errorf("get chain genesis: %w", err)
		}
		s.chainId = gres.Genesis.ChainID
	}
	if !cmd.Flags().Changed("nonce") {
		if s.nonce, err = queryNonce(ctx, cli, key.Address()); err != nil {
			return nil, fmt.Errorf("query nonce: %w", err)
		}
	}
	return s, nil
}

func (s *signer) send(ctx context.Context, tp tx.TxType, body any) error {
	btx := &tx.AssemblyTx{
		Version: tx.TxVersion1,
		Type:    tp,
		Nonce:   s.nonce,
		Tx:      body,
	}
	if err := btx.Sign(s.chainId, s.key.PrivateKey()); err != nil {
		return fmt.Errorf("sign tx: %w", err)
	}
	dat, err := tx.MarshalAssemblyTx(btx)
	if err != nil {
		return err
	}
	s.nonce++
	if s.args.NoSend {
		fmt.Println(hex.EncodeToString(dat))
		return nil
	}
	res, err := s.cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		return fmt.Errorf("broadcast tx: %w", err)
	}
	out, _ := json.Marshal(res)
	fmt.Println(string(out))
	if res.Code != 0 {
		return fmt.Errorf("%s rejected: code %d: %s", tp, res.Code, res.Log)
	}
	return nil
}

func sendTx(cmd *cobra.Command, args *txArguments, tp tx.TxType, body any) error {
	s, err := newSigner(cmd, args)
	if err != nil {
		return err
	}
	return s.send(cmd.Context(), tp, body)
}

// newTxCmd builds a command that signs and sends one tx of type tp whose
// body is built from the positional args.
func newTxCmd(use, short string, tp tx.TxType, posArgs cobra.PositionalArgs, build func(args []string) (any, error)) *cobra.Command {
	a := &txArguments{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  posArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := build(args)
			if err != nil {
				return err
			}
			return sendTx(cmd, a, tp, body)
		},
	}
	txFlags(cmd, a)
	return cmd
}

func emptyBody(args []string) (any, error) {
	return &tx.EmptyTx{}, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseUint(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

func addressBody(build func(a common.Address) any) func(args []string) (any, error) {
	return func(args []string) (any, error) {
		a, err := parseAddress(args[0])
		if err != nil {
			return nil, err
		}
		return build(a), nil
	}
}

func uintBody(build func(n uint64) any) func(args []string) (any, error) {
	return func(args []string) (any, error) {
		n, err := parseUint(args[0])
		if err != nil {
			return nil, err
		}
		return build(n), nil
	}
}
