package database

import "database/sql"

// InsertEntityProduct stores one Amazon product reference for an entity.
// Duplicate (entity, url) pairs are ignored.
func (db *DB) InsertEntityProduct(entityID string, p Product) error {
	_, err := db.conn.Exec(
		`INSERT OR IGNORE INTO entity_products (entity_id, url, title, thumbnail)
		VALUES (?, ?, ?, ?)`,
		entityID, p.URL, p.Title, p.Thumbnail,
	)
	return err
}

// GetProductsForEntity returns the stored products for one entity.
func (db *DB) GetProductsForEntity(entityID string) ([]Product, error) {
	rows, err := db.conn.Query(
		"SELECT url, title, thumbnail FROM entity_products WHERE entity_id = ? ORDER BY rowid",
		entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// AttachProducts loads products for every entity in the slice, in place.
func (db *DB) AttachProducts(entities []Entity) error {
	for i := range entities {
		products, err := db.GetProductsForEntity(entities[i].ID)
		if err != nil {
			return err
		}
		entities[i].Products = products
	}
	return nil
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.URL, &p.Title, &p.Thumbnail); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
