package model

// RPCRequest is the body of POST /.
type RPCRequest struct {
	APIName string `json:"api_name" binding:"required"`
	// Params is optional. When omitted the command's preset parameters are used.
	Params map[string]string `json:"api_params,omitempty"`
}
