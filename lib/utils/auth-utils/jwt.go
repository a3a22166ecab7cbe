package authutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func GetClaims(ctx *fiber.Ctx) jwt.MapClaims {
	token, ok := ctx.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	return token.Claims.(jwt.MapClaims)
}

// GetUserID возвращает идентификатор рекрутера из токена
func GetUserID(ctx *fiber.Ctx) string {
	claims := GetClaims(ctx)
	sub, _ := claims["sub"].(string)
	return sub
}

// GetUserEmail возвращает email рекрутера из токена, используется для привязки анонимных тестов
func GetUserEmail(ctx *fiber.Ctx) string {
	claims := GetClaims(ctx)
	email, _ := claims["email"].(string)
	return email
}
