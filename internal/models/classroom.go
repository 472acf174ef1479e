package models

import "time"

// Classroom is a room with a fixed seat grid.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Rows      int       `db:"grid_rows" json:"rows"`
	Columns   int       `db:"grid_columns" json:"columns"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassroomSummary adds live occupancy to a classroom.
type ClassroomSummary struct {
	Classroom
	Capacity int `json:"capacity"`
	Occupied int `json:"occupied"`
}
