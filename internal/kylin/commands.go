package kylin

import (
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
)

const (
	CmdLiquidationOrderList        = "liquidation_order_list"
	CmdBitmexPerpetualContractRate = "bitmex_perpetual_contract_rate"
	CmdBitmexLargeOrderList        = "bitmex_large_order_list"
	CmdBitfinexHoldingsMinutes     = "bitfinex_holdings_minutes"
)

// Command maps a logical command name to one fixed upstream call.
type Command struct {
	Name   string
	Method string
	Path   string
	// AcceptsParams is false for commands that always send an empty parameter set.
	AcceptsParams bool
	Required      []string
	Defaults      map[string]string
	// Preset is sent by the RPC surface when the caller supplies no parameters at all.
	Preset map[string]string
}

var commands = []Command{
	{
		Name:          CmdLiquidationOrderList,
		Method:        http.MethodPost,
		Path:          "/data/liquidation",
		AcceptsParams: true,
		Required:      []string{"exchCode", "type"},
		Defaults: map[string]string{
			"coinName": "BTC",
			"pageNum":  "1",
			"pageSize": "10",
		},
		Preset: map[string]string{
			"coinName":   "BTC",
			"exchCode":   "okex",
			"type":       "0",
			"futureType": "0",
		},
	},
	{
		Name:   CmdBitmexPerpetualContractRate,
		Method: http.MethodPost,
		Path:   "/data/getContractRate/XBTUSD",
	},
	{
		Name:   CmdBitmexLargeOrderList,
		Method: http.MethodPost,
		Path:   "/data/largeDeal",
	},
	{
		Name:   CmdBitfinexHoldingsMinutes,
		Method: http.MethodPost,
		Path:   "/data/getBitfinexPositionRatio/minute",
	},
}

var commandsByName = func() map[string]*Command {
	m := make(map[string]*Command, len(commands))
	for i := range commands {
		m[commands[i].Name] = &commands[i]
	}
	return m
}()

// Lookup matches name exactly.
func Lookup(name string) (*Command, bool) {
	cmd, ok := commandsByName[name]
	return cmd, ok
}

// Names lists the supported commands in a stable order.
func Names() []string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}
	return names
}

// PresetParams returns a copy of the preset parameters for name, or nil.
func PresetParams(name string) map[string]string {
	cmd, ok := Lookup(name)
	if !ok || cmd.Preset == nil {
		return nil
	}
	return maps.Clone(cmd.Preset)
}

// Prepare validates params and returns the set to send upstream.
// Defaults fill only keys the caller left out. params is never modified.
func (c *Command) Prepare(params map[string]string) (map[string]string, error) {
	if !c.AcceptsParams {
		return map[string]string{}, nil
	}

	var missing []string
	for _, key := range c.Required {
		if _, ok := params[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewInvalidRequest(fmt.Sprintf("%s requires %s", c.Name, strings.Join(missing, ", ")))
	}

	out := make(map[string]string, len(params)+len(c.Defaults))
	maps.Copy(out, params)
	for k, v := range c.Defaults {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out, nil
}
