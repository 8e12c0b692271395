package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimePNG = "image/png"
)

// gin 上下文键
const (
	ContextUserKey   = "user"
	ContextTenantKey = "tenant"
)

const TenantHeader = "X-Tenant-ID"
