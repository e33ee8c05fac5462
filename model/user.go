package model

import "time"

type User struct {
	UserID           string    `bson:"user_id" json:"user_id"`
	Username         string    `bson:"username" json:"username" binding:"required,min=4,max=20"`
	Email            string    `bson:"email" json:"email" binding:"required,email"`
	Password         string    `bson:"password" json:"password,omitempty" binding:"required,password"` // Stored as argon2id hash
	TwoFactorEnabled bool      `bson:"two_factor_enabled" json:"two_factor_enabled"`
	TwoFactorSecret  string    `bson:"two_factor_secret,omitempty" json:"-"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}
