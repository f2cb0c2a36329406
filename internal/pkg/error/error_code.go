package error

const (
	// 0 ~ 999: 成功類別
	SUCCESS = 0 // 200 OK

	// 40000 ~ 40099: 用戶請求錯誤 (400 系列)
	BAD_REQUEST_BODY    = 40000 // 400 - 無效的請求體
	BAD_REQUEST_PARAMS  = 40001 // 400 - 無效的請求參數
	BAD_REQUEST_HEADERS = 40002 // 400 - 無效的請求標頭
	BAD_REQUEST_UPLOAD  = 40003 // 400 - 上傳檔案不合法

	// 40100 ~ 40399: 驗證與權限錯誤 (401 403 系列)
	UNAUTHORIZED  = 40100 // 401 - 未授權
	TOKEN_REVOKED = 40101 // 401 - token 已登出
	FORBIDDEN     = 40300 // 403 - 禁止訪問
	NOT_HOST      = 40301 // 403 - 非會議主持人

	// 40400 ~ 40499: 資源錯誤 (404 系列)
	NOT_FOUND         = 40400 // 404 - 資源未找到
	USER_NOT_FOUND    = 40401 // 404 - 使用者不存在
	MEETING_NOT_FOUND = 40402 // 404 - 會議不存在

	// 40900 ~ 40999: 狀態衝突 (409 系列)
	CONFLICT           = 40900 // 409 - 狀態衝突
	EMAIL_EXISTS       = 40901 // 409 - 信箱已被使用
	MEETING_NOT_ACTIVE = 40902 // 409 - 會議未啟用
	VOICE_DISABLED     = 40903 // 409 - 會議未開啟語音

	// 42900 ~ 42999: 流量限制錯誤 (429 系列)
	RATE_LIMIT_EXCEEDED = 42900 // 429 - 速率限制超過

	// 50000 ~ 50199: 伺服器內部錯誤 (500 系列)
	INTERNAL_ERROR      = 50000 // 500 - 內部錯誤
	DATABASE_ERROR      = 50001 // 500 - 資料庫錯誤
	SERVICE_UNAVAILABLE = 50002 // 503 - 服務暫停
	MISCONFIGURED       = 50003 // 500 - 設定缺漏

	// 50200 ~ 50499: 外部請求錯誤 (502 504 系列)
	EXTERNAL_REQUEST_ERROR = 50200 // 502 - 外部 API 請求錯誤
	GATEWAY_TIMEOUT        = 50400 // 504 - 外部 API 超時
)
