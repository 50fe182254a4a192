// Package module holds the typed facades of the chain modules. A facade
// is a stateless value over a testtube.Runner; every method fixes the
// routing path and the request and response types of one operation.
//
//	bank := module.NewBank(app)
//	res, err := bank.QueryBalance(ctx, banktypes.QueryBalanceRequest{Address: addr, Denom: "inj"})
package module
