package response

// 业务状态码，与 HTTP 状态码语义保持一致
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeNotFound        = 404
	CodeTooLarge        = 413
	CodeTooManyRequests = 429
	CodeInternal        = 500
)
