package models

import (
	"github.com/BinLe1988/mood-tracker/pkg/mood"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 向gin的校验引擎注册自定义标签
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("mood", validMood)
}

// validMood 校验心情标签，忽略大小写和首尾空格
func validMood(fl validator.FieldLevel) bool {
	_, ok := mood.ParseMood(fl.Field().String())
	return ok
}
