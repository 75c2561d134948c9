package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgerrors "formulahub-backend/pkg/errors"
)

type seedFormula struct {
	name        string
	description string
	expression  string
	videoURL    string
	category    string
}

var sampleFormulas = []seedFormula{
	{
		name:        "SOMA",
		description: "Soma todos os valores em um intervalo de células",
		expression:  "=SOMA(A1:A10)",
		videoURL:    "https://www.youtube.com/watch?v=FXjLWYu8F9k",
		category:    "Matemática",
	},
	{
		name:        "MÉDIA",
		description: "Calcula a média aritmética de um conjunto de números",
		expression:  "=MÉDIA(B1:B20)",
		category:    "Matemática",
	},
	{
		name:        "SE",
		description: "Executa um teste lógico e retorna um valor se verdadeiro e outro se falso",
		expression:  `=SE(A1>10;"Grande";"Pequeno")`,
		videoURL:    "https://www.youtube.com/watch?v=_Ir6ne2lG7c",
		category:    "Lógica",
	},
	{
		name:        "PROCV",
		description: "Procura um valor na primeira coluna e retorna um valor na mesma linha",
		expression:  "=PROCV(A2;Tabela!A:D;3;FALSO)",
		category:    "Pesquisa",
	},
	{
		name:        "CONCATENAR",
		description: "Junta duas ou mais cadeias de texto em uma única cadeia",
		expression:  `=CONCATENAR(A1;" ";B1)`,
		category:    "Texto",
	},
	{
		name:        "HOJE",
		description: "Retorna a data de hoje",
		expression:  "=HOJE()",
		category:    "Data e Hora",
	},
	{
		name:        "ARRED",
		description: "Arredonda um número para um número especificado de dígitos",
		expression:  "=ARRED(A1;2)",
		category:    "Arredondamento",
	},
	{
		name:        "CONT.SE",
		description: "Conta o número de células que atendem a um critério",
		expression:  `=CONT.SE(A1:A10;">10")`,
		category:    "Estatística",
	},
}

// Seed inserts the sample catalog when the formulas table is empty.
// Returns the number of formulas inserted; zero means the database
// already had content and was left alone.
func Seed(ctx context.Context, db *DB, now time.Time) (int, error) {
	var existing int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(1) FROM formulas").Scan(&existing); err != nil {
		return 0, pkgerrors.NewDatabaseError("seed", err)
	}
	if existing > 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("seed", err)
	}
	defer tx.Rollback()

	categoryIDs := make(map[string]int64)
	for _, f := range sampleFormulas {
		if _, ok := categoryIDs[f.category]; ok {
			continue
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO categories (name, description, created_at, updated_at) VALUES (?, '', ?, ?)",
			f.category, now, now,
		)
		if err != nil {
			return 0, pkgerrors.NewDatabaseError("seed categories", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, pkgerrors.NewDatabaseError("seed categories", err)
		}
		categoryIDs[f.category] = id
	}

	for _, f := range sampleFormulas {
		id := uuid.New().String()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO formulas (id, name, description, formula, video_url, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, f.name, f.description, f.expression, f.videoURL, now, now,
		)
		if err != nil {
			return 0, pkgerrors.NewDatabaseError("seed formulas", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO formula_categories (formula_id, category_id) VALUES (?, ?)",
			id, categoryIDs[f.category],
		)
		if err != nil {
			return 0, pkgerrors.NewDatabaseError("seed formulas", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, pkgerrors.NewDatabaseError("seed", err)
	}
	return len(sampleFormulas), nil
}
