package utils

import "golang.org/x/crypto/bcrypt"

// 登录确认码落库前先 bcrypt，泄库不泄码
func HashCode(code string) string {
	b, _ := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(b)
}
func CheckCode(code, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(code)) == nil
}
