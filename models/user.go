package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Role enum — the six fixed actor categories. The workflow transition
// table matches on these exhaustively.
type Role string

const (
	Citizen          Role = "Citizen"
	HeadOfDepartment Role = "HeadOfDepartment"
	Engineer         Role = "Engineer"
	FundManager      Role = "FundManager"
	ApprovingManager Role = "ApprovingManager"
	Contractor       Role = "Contractor"
)

// ValidRole reports whether r is one of the six fixed roles.
func ValidRole(r string) bool {
	switch Role(r) {
	case Citizen, HeadOfDepartment, Engineer, FundManager, ApprovingManager, Contractor:
		return true
	}
	return false
}

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password,omitempty" json:"-"`
	Role       Role               `bson:"role" json:"role"`
	Active     bool               `bson:"active" json:"active"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	Zone       string             `bson:"zone,omitempty" json:"zone,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}
