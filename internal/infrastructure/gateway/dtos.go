package gateway

// createResponse is the gateway's reply to payment/create. A created
// session carries url, token and the gateway's own order number; a
// rejection carries code and message instead.
type createResponse struct {
	URL     string `json:"url"`
	Token   string `json:"token"`
	Order   int64  `json:"order"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusResponse is the gateway's reply to payment/getStatus.
type statusResponse struct {
	Status        int    `json:"status"`
	CommerceOrder string `json:"commerceOrder"`
	Optional      string `json:"optional"`
	Code          int    `json:"code"`
	Message       string `json:"message"`
}
