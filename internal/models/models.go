package models

import "time"

// User represents a registered user
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nombre"`
	LastName     string    `json:"apellidos"`
	Age          *int      `json:"edad,omitempty"`
	Location     string    `json:"localizacion"`
	Email        string    `json:"correo"`
	PasswordHash string    `json:"-"`
	ProfileImage *string   `json:"imagen_perfil"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"fecha_registro"`
}

// Public returns the profile fields that other users may see
func (u *User) Public() *UserPublic {
	return &UserPublic{
		ID:           u.ID,
		Name:         u.Name,
		LastName:     u.LastName,
		ProfileImage: u.ProfileImage,
	}
}

// UserPublic is the profile shown to chat partners
type UserPublic struct {
	ID           int64   `json:"id"`
	Name         string  `json:"nombre"`
	LastName     string  `json:"apellidos"`
	ProfileImage *string `json:"imagen_perfil"`
}

// UserUpdate is a partial profile update. Nil fields keep the stored value.
type UserUpdate struct {
	Name         *string `json:"nombre"`
	LastName     *string `json:"apellidos"`
	Age          *int    `json:"edad"`
	Location     *string `json:"localizacion"`
	ProfileImage *string `json:"imagen_perfil"`
	PushToken    *string `json:"push_token"`
}

// Empty reports whether the update carries no field
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.LastName == nil && u.Age == nil &&
		u.Location == nil && u.ProfileImage == nil && u.PushToken == nil
}

// Pet is owned by exactly one user
type Pet struct {
	ID      int64    `json:"id"`
	OwnerID int64    `json:"usuario_id"`
	Name    string   `json:"nombre"`
	Breed   string   `json:"raza"`
	Age     *int     `json:"edad"`
	Gender  string   `json:"genero"`
	Traits  string   `json:"caracteristicas"`
	Likes   string   `json:"gustos"`
	Images  []string `json:"imagenes"`
}

// PetUpdate is a partial pet update. Nil fields keep the stored value;
// a non-nil Images replaces the whole list.
type PetUpdate struct {
	Name   *string   `json:"nombre"`
	Breed  *string   `json:"raza"`
	Age    *int      `json:"edad"`
	Gender *string   `json:"genero"`
	Traits *string   `json:"caracteristicas"`
	Likes  *string   `json:"gustos"`
	Images *[]string `json:"imagenes"`
}

// Empty reports whether the update carries no field
func (u PetUpdate) Empty() bool {
	return u.Name == nil && u.Breed == nil && u.Age == nil && u.Gender == nil &&
		u.Traits == nil && u.Likes == nil && u.Images == nil
}

// Vaccine is a vaccination record of a pet. Dates use the YYYY-MM-DD
// layout.
type Vaccine struct {
	ID        int64   `json:"id"`
	PetID     int64   `json:"mascota_id"`
	Name      string  `json:"nombre"`
	AppliedOn *string `json:"fecha_aplicacion"`
	Applied   bool    `json:"aplicada"`
	NextDue   *string `json:"fecha_proxima"`
	Notes     *string `json:"notas"`
}

// VaccineUpdate is a partial vaccine update. Nil fields keep the stored
// value.
type VaccineUpdate struct {
	Name      *string `json:"nombre"`
	AppliedOn *string `json:"fecha_aplicacion"`
	Applied   *bool   `json:"aplicada"`
	NextDue   *string `json:"fecha_proxima"`
	Notes     *string `json:"notas"`
}

// Empty reports whether the update carries no field
func (u VaccineUpdate) Empty() bool {
	return u.Name == nil && u.AppliedOn == nil && u.Applied == nil &&
		u.NextDue == nil && u.Notes == nil
}

// PetPreview is the pet shown next to a chat
type PetPreview struct {
	ID    int64   `json:"id"`
	Name  string  `json:"nombre"`
	Image *string `json:"imagen"`
}

// Chat is the messaging channel of a matched user pair.
// User1ID is always the smaller id of the pair.
type Chat struct {
	ID            int64      `json:"id"`
	User1ID       int64      `json:"usuario1_id"`
	User2ID       int64      `json:"usuario2_id"`
	CreatedAt     time.Time  `json:"fecha_creacion"`
	LastMessageAt *time.Time `json:"fecha_ultimo_mensaje"`
}

// HasParticipant reports whether userID is one of the two participants
func (c *Chat) HasParticipant(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the participant that is not userID
func (c *Chat) OtherParticipant(userID int64) int64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// ChatSummary is a chat as listed for one of its participants
type ChatSummary struct {
	Chat
	OtherUserID int64       `json:"otro_usuario_id"`
	OtherUser   *UserPublic `json:"otro_usuario"`
	MatchedPet  *PetPreview `json:"mascota_match"`
	LastMessage *Message    `json:"ultimo_mensaje"`
	UnreadCount int         `json:"no_leidos"`
}

// Message belongs to one chat and is immutable except for Read
type Message struct {
	ID         int64     `json:"id"`
	ChatID     int64     `json:"chat_id"`
	SenderID   int64     `json:"usuario_id"`
	SenderName string    `json:"usuario_nombre,omitempty"`
	Text       string    `json:"texto"`
	SentAt     time.Time `json:"fecha_envio"`
	Read       bool      `json:"leido"`
}

// NormalizePair orders two user ids the way chats store them
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
