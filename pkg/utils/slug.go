package utils

import "github.com/gosimple/slug"

// UsernameFromEmail 首次注册时从邮箱确定性推导用户名
func UsernameFromEmail(email string) string { return slug.Make(email) }

func Slugify(s string) string { return slug.Make(s) }
