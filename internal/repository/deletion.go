package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// deletionStep is one statement of an ordered deletion plan. Every statement
// takes the root entity id as $1.
type deletionStep struct {
	Table string
	SQL   string
}

// Subqueries shared by the user plan.
const (
	userPets   = `SELECT id FROM mascotas WHERE usuario_id = $1`
	userChats  = `SELECT id FROM chats WHERE usuario1_id = $1 OR usuario2_id = $1`
	userGroups = `SELECT id FROM grupos WHERE creador_id = $1`
	userPosts  = `SELECT id FROM posts WHERE usuario_id = $1 OR grupo_id IN (` + userGroups + `)`
)

// UserDeletionPlan removes a user and everything that references it.
// Foreign keys do not cascade, so rows are deleted children first:
// messages before chats, likes/rejects/vaccines before pets, post likes and
// comments before posts, posts and memberships before groups, the user last.
var UserDeletionPlan = []deletionStep{
	{"mensajes", `DELETE FROM mensajes WHERE usuario_id = $1 OR chat_id IN (` + userChats + `)`},
	{"chats", `DELETE FROM chats WHERE usuario1_id = $1 OR usuario2_id = $1`},
	{"matches", `DELETE FROM matches WHERE usuario_id = $1 OR mascota_id IN (` + userPets + `)`},
	{"rechazos", `DELETE FROM rechazos WHERE usuario_id = $1 OR mascota_id IN (` + userPets + `)`},
	{"vacunas_mascota", `DELETE FROM vacunas_mascota WHERE mascota_id IN (` + userPets + `)`},
	{"mascotas", `DELETE FROM mascotas WHERE usuario_id = $1`},
	{"likes_post", `DELETE FROM likes_post WHERE usuario_id = $1 OR post_id IN (` + userPosts + `)`},
	{"comentarios_post", `DELETE FROM comentarios_post WHERE usuario_id = $1 OR post_id IN (` + userPosts + `)`},
	{"posts", `DELETE FROM posts WHERE usuario_id = $1 OR grupo_id IN (` + userGroups + `)`},
	{"miembros_grupo", `DELETE FROM miembros_grupo WHERE usuario_id = $1 OR grupo_id IN (` + userGroups + `)`},
	{"grupos", `DELETE FROM grupos WHERE creador_id = $1`},
	{"usuarios", `DELETE FROM usuarios WHERE id = $1`},
}

// PetDeletionPlan removes a pet, its vaccine records and every like or
// reject that points at it.
var PetDeletionPlan = []deletionStep{
	{"vacunas_mascota", `DELETE FROM vacunas_mascota WHERE mascota_id = $1`},
	{"matches", `DELETE FROM matches WHERE mascota_id = $1`},
	{"rechazos", `DELETE FROM rechazos WHERE mascota_id = $1`},
	{"mascotas", `DELETE FROM mascotas WHERE id = $1`},
}

// executePlan runs the steps in order on tx and returns the rows removed by
// the last step, which is always the root entity.
func executePlan(ctx context.Context, tx pgx.Tx, plan []deletionStep, id int64) (int64, error) {
	var affected int64
	for _, step := range plan {
		tag, err := tx.Exec(ctx, step.SQL, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete from %s: %w", step.Table, err)
		}
		affected = tag.RowsAffected()
	}
	return affected, nil
}
