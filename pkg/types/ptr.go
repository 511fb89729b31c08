package types

// StringPtr 返回字符串指针，便于构造用户配置
func StringPtr(s string) *string { return &s }

// IntPtr 返回整数指针
func IntPtr(i int) *int { return &i }

// Uint64Ptr 返回无符号整数指针
func Uint64Ptr(u uint64) *uint64 { return &u }
