package simapp

import (
	"fmt"
	"sort"

	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/types"
)

type msgRoute struct {
	system bool
	// decode returns the message and the address that must authorize it.
	decode func(a types.Any) (any, string, error)
	handle func(ctx *Context, msg any) (any, error)
}

type queryRoute func(ctx *Context, data []byte) ([]byte, error)

// contentRoute executes a legacy governance proposal content.
type contentRoute struct {
	title  func(a types.Any) (string, string, error)
	handle func(ctx *Context, a types.Any) error
}

// router maps type URLs and query paths to handlers.
type router struct {
	msgs     map[string]msgRoute
	queries  map[string]queryRoute
	contents map[string]contentRoute
}

func newRouter() *router {
	return &router{
		msgs:     make(map[string]msgRoute),
		queries:  make(map[string]queryRoute),
		contents: make(map[string]contentRoute),
	}
}

func (r *router) addMsg(typeURL string, route msgRoute) {
	if _, dup := r.msgs[typeURL]; dup {
		panic(fmt.Sprintf("duplicate message route %s", typeURL))
	}
	r.msgs[typeURL] = route
}

// registerMsg routes typeURL to h. signer names the address that must
// authorize the message.
func registerMsg[M, R any](r *router, typeURL string, signer func(*M) string, h func(*Context, *M) (*R, error)) {
	r.addMsg(typeURL, msgRoute{
		decode: decoder(typeURL, signer),
		handle: func(ctx *Context, msg any) (any, error) { return h(ctx, msg.(*M)) },
	})
}

// registerSystemMsg routes a message that is only accepted in unsigned
// system transactions.
func registerSystemMsg[M, R any](r *router, typeURL string, h func(*Context, *M) (*R, error)) {
	r.addMsg(typeURL, msgRoute{
		system: true,
		decode: decoder(typeURL, func(*M) string { return "" }),
		handle: func(ctx *Context, msg any) (any, error) { return h(ctx, msg.(*M)) },
	})
}

func decoder[M any](typeURL string, signer func(*M) string) func(types.Any) (any, string, error) {
	return func(a types.Any) (any, string, error) {
		m := new(M)
		if err := codec.UnpackAs(a, typeURL, m); err != nil {
			return nil, "", wrapf(errTxDecode, "%v", err)
		}
		return m, signer(m), nil
	}
}

func registerQuery[Q, R any](r *router, path string, h func(*Context, *Q) (*R, error)) {
	if _, dup := r.queries[path]; dup {
		panic(fmt.Sprintf("duplicate query route %s", path))
	}
	r.queries[path] = func(ctx *Context, data []byte) ([]byte, error) {
		q := new(Q)
		if err := codec.Unmarshal(data, q); err != nil {
			return nil, wrapf(errInvalidRequest, "%v", err)
		}
		res, err := h(ctx, q)
		if err != nil {
			return nil, err
		}
		return codec.Marshal(res)
	}
}

// registerContent routes a legacy proposal content type. title reports
// the title and description stored with the proposal.
func registerContent[C any](r *router, typeURL string, title func(*C) (string, string), h func(*Context, *C) error) {
	decode := func(a types.Any) (*C, error) {
		c := new(C)
		if err := codec.UnpackAs(a, typeURL, c); err != nil {
			return nil, wrapf(errGovInvalidContent, "%v", err)
		}
		return c, nil
	}
	r.contents[typeURL] = contentRoute{
		title: func(a types.Any) (string, string, error) {
			c, err := decode(a)
			if err != nil {
				return "", "", err
			}
			t, d := title(c)
			return t, d, nil
		},
		handle: func(ctx *Context, a types.Any) error {
			c, err := decode(a)
			if err != nil {
				return err
			}
			return h(ctx, c)
		},
	}
}

// dispatch runs one message on ctx and returns its packed response.
func (r *router) dispatch(ctx *Context, a types.Any) (types.Any, error) {
	route, ok := r.msgs[a.TypeURL]
	if !ok {
		return types.Any{}, wrapf(errUnknownRequest, "unrecognized message type %s", a.TypeURL)
	}
	msg, signer, err := route.decode(a)
	if err != nil {
		return types.Any{}, err
	}
	if route.system != ctx.system {
		return types.Any{}, wrapf(errUnauthorized, "%s is not allowed in this transaction", a.TypeURL)
	}
	if !route.system {
		if err := ctx.auth(ctx, signer, a.TypeURL, msg); err != nil {
			return types.Any{}, err
		}
	}
	ctx.gas.consume(gasPerMsg)
	res, err := route.handle(ctx, msg)
	if err != nil {
		return types.Any{}, err
	}
	packed, err := codec.Pack(codec.ResponseURL(a.TypeURL), res)
	if err != nil {
		return types.Any{}, err
	}
	ctx.emit("message", "action", a.TypeURL, "sender", signer)
	return packed, nil
}

// signerOf decodes a and returns its required signer.
func (r *router) signerOf(a types.Any) (string, error) {
	route, ok := r.msgs[a.TypeURL]
	if !ok {
		return "", wrapf(errUnknownRequest, "unrecognized message type %s", a.TypeURL)
	}
	if route.system {
		return "", wrapf(errUnauthorized, "%s is not allowed in this transaction", a.TypeURL)
	}
	_, signer, err := route.decode(a)
	return signer, err
}

func (r *router) query(ctx *Context, path string, data []byte) ([]byte, error) {
	route, ok := r.queries[path]
	if !ok {
		return nil, wrapf(errUnknownRequest, "unknown query path %s", path)
	}
	return route(ctx, data)
}

// paths lists the registered query paths, sorted.
func (r *router) paths() []string {
	out := make([]string, 0, len(r.queries))
	for p := range r.queries {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
