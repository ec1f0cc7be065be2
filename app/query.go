package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/calehh/assembly-app/state"
	"github.com/calehh/assembly-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
)

const CodeUnknownPath uint32 = 404

var (
	ErrQueryNotFound = types.NewError(types.InvalidReference, "not found")
	ErrQueryArgs     = types.NewError(types.InvalidParameter, "bad query arguments")
)

// Querier answers one query route against a snapshot of the last committed
// block. args are the path segments after the route.
type Querier interface {
	Query(ctx context.Context, st *state.State, args []string) (value any, err error)
}

type QuerierFunc func(ctx context.Context, st *state.State, args []string) (any, error)

func (f QuerierFunc) Query(ctx context.Context, st *state.State, args []string) (any, error) {
	return f(ctx, st, args)
}

// splitPath turns "/tally/3" into the route "/tally/" and args ["3"]. When
// the path carries no arguments, req.Data is used as the single argument.
func splitPath(req *abcitypes.RequestQuery) (route string, args []string) {
	parts := strings.Split(strings.Trim(req.Path, "/"), "/")
	route = "/" + parts[0] + "/"
	args = parts[1:]
	if len(args) == 0 && len(req.Data) > 0 {
		args = []string{string(req.Data)}
	}
	return
}

func (app *AssemblyApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{Codespace: types.Codespace}
	route, args := splitPath(req)
	q, ok := app.queriers[route]
	if !ok {
		res.Code = CodeUnknownPath
		res.Log = "unknown query path " + route
		return res, nil
	}
	st, err := app.db.Snapshot()
	if err != nil {
		return nil, err
	}
	res.Height = int64(st.Header().Height)
	value, err := q.Query(ctx, st, args)
	if err != nil {
		res.Code = types.Code(err)
		res.Log = err.Error()
		return res, nil
	}
	res.Value, err = json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func addressArg(args []string, i int) (common.Address, error) {
	if len(args) <= i || !common.IsHexAddress(args[i]) {
		return common.Address{}, ErrQueryArgs
	}
	return common.HexToAddress(args[i]), nil
}

func uintArg(args []string, i int) (uint64, error) {
	if len(args) <= i {
		return 0, ErrQueryArgs
	}
	n, err := strconv.ParseUint(args[i], 10, 64)
	if err != nil {
		return 0, ErrQueryArgs
	}
	return n, nil
}

func found[T any](v *T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrQueryNotFound
	}
	return v, nil
}

func (app *AssemblyApp) registerQuerier() {
	app.queriers["/params/"] = QuerierFunc(func(_ context.Context, st *state.State, _ []string) (any, error) {
		return st.Params()
	})
	app.queriers["/roles/"] = QuerierFunc(func(_ context.Context, st *state.State, _ []string) (any, error) {
		return st.Roles()
	})
	app.queriers["/population/"] = QuerierFunc(func(_ context.Context, st *state.State, _ []string) (any, error) {
		return st.Population()
	})
	app.queriers["/oracle/"] = QuerierFunc(func(_ context.Context, st *state.State, _ []string) (any, error) {
		return st.OracleInfo()
	})
	app.queriers["/seats/"] = QuerierFunc(func(_ context.Context, st *state.State, _ []string) (any, error) {
		return st.Seats()
	})
	app.queriers["/schema/"] = QuerierFunc(func(_ context.Context, st *state.State, _ []string) (any, error) {
		return st.SchemaVersion()
	})
	app.queriers["/incentives/"] = QuerierFunc(func(_ context.Context, st *state.State, _ []string) (any, error) {
		return st.Incentives()
	})
	app.queriers["/member/"] = QuerierFunc(func(_ context.Context, st *state.State, args []string) (any, error) {
		a, err := addressArg(args, 0)
		if err != nil {
			return nil, err
		}
		return found(st.Member(a))
	})
	app.queriers["/human/"] = QuerierFunc(func(_ context.Context, st *state.State, args []string) (any, error) {
		a, err := addressArg(args, 0)
		if err != nil {
			return nil, err
		}
		return st.IsHuman(a)
	})
	app.queriers["/tally/"] = QuerierFunc(func(_ context.Context, st *state.State, args []string) (any, error) {
		id, err := uintArg(args, 0)
		if err != nil {
			return nil, err
		}
		return st.TallyView(id)
	})
	app.queriers["/vote/"] = QuerierFunc(func(_ context.Context, st *state.State, args []string) (any, error) {
		id, err := uintArg(args, 0)
		if err != nil {
			return nil, err
		}
		a, err := addressArg(args, 1)
		if err != nil {
			return nil, err
		}
		return st.Vote(id, a)
	})
	app.queriers["/proposal/"] = QuerierFunc(func(_ context.Context, st *state.State, args []string) (any, error) {
		id, err := uintArg(args, 0)
		if err != nil {
			return nil, err
		}
		return st.ProposalView(id)
	})
	app.queriers["/rewards/"] = QuerierFunc(func(_ context.Context, st *state.State, args []string) (any, error) {
		a, err := addressArg(args, 0)
		if err != nil {
			return nil, err
		}
		return st.Rewards(a)
	})
	app.queriers["/balance/"] = QuerierFunc(func(_ context.Context, st *state.State, args []string) (any, error) {
		a, err := addressArg(args, 0)
		if err != nil {
			return nil, err
		}
		return st.BalanceOf(a)
	})
	app.queriers["/nonce/"] = QuerierFunc(func(_ context.Context, st *state.State, args []string) (any, error) {
		a, err := addressArg(args, 0)
		if err != nil {
			return nil, err
		}
		return st.Nonce(a)
	})
}
