package db

import (
	"database/sql"

	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
)

type UserStorage interface {
	InsertUser(*models.User) (int, error)
	GetUserByID(userID int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CountUsersByEmail(email string) (int, error)
	GetUsersByRole(role string, status string) ([]models.User, error)
	GetDoctorsBySpeciality(speciality string) ([]models.User, error)
	UpdateUserStatus(userID int, status string) error
}

const (
	insertUser = `
	INSERT
		user
	SET
		firstname = :firstname,
		lastname = :lastname,
		email = :email,
		password = :password,
		contact = :contact,
		age = :age,
		sex = :sex,
		blood_group = :blood_group,
		street = :street,
		city = :city,
		pincode = :pincode,
		role = :role,
		status = :status
	`

	insertDoctor = `
	INSERT
		doctor
	SET
		user_id = :user_id,
		speciality = :speciality,
		experience = :experience,
		fees = :fees,
		image_name = :image_name
	`

	selectUser = `
	SELECT
		user.id,
		user.firstname,
		user.lastname,
		user.email,
		user.password,
		user.contact,
		user.age,
		user.sex,
		user.blood_group,
		user.street,
		user.city,
		user.pincode,
		user.role,
		user.status,
		user.created,
		user.updated,
		doctor.speciality,
		doctor.experience,
		doctor.fees,
		doctor.image_name
	FROM
		user
	LEFT JOIN
		doctor ON (doctor.user_id = user.id)
	`

	getUserByID = selectUser + `
	WHERE
		user.id = :user_id
	`

	getUserByEmail = selectUser + `
	WHERE
		user.email = :email
	`

	getUsersByRole = selectUser + `
	WHERE
		user.role = :role AND
		(:status = '' OR user.status = :status)
	ORDER BY
		user.id ASC
	`

	getDoctorsBySpeciality = selectUser + `
	WHERE
		user.role = 'DOCTOR' AND
		user.status = 'ACTIVE' AND
		doctor.speciality = :speciality
	ORDER BY
		user.id ASC
	`

	countUsersByEmail = `
	SELECT
		count(user.id)
	FROM
		user
	WHERE
		user.email = :email
	`

	updateUserStatus = `
	UPDATE
		user
	SET
		status = :status,
		updated = current_timestamp()
	WHERE
		user.id = :user_id
	`
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user       models.User
		speciality sql.NullString
		experience sql.NullInt64
		fees       sql.NullInt64
		imageName  sql.NullString
	)

	if err := row.Scan(
		&user.ID,
		&user.Firstname,
		&user.Lastname,
		&user.Email,
		&user.Password,
		&user.Contact,
		&user.Age,
		&user.Sex,
		&user.BloodGroup,
		&user.Street,
		&user.City,
		&user.Pincode,
		&user.Role,
		&user.Status,
		&user.Created,
		&user.Updated,
		&speciality,
		&experience,
		&fees,
		&imageName,
	); err != nil {
		return nil, err
	}

	if speciality.Valid {
		user.Doctor = &models.DoctorProfile{
			Speciality: speciality.String,
			Experience: int(experience.Int64),
			Fees:       int(fees.Int64),
			ImageName:  imageName.String,
		}
	}

	return &user, nil
}

// InsertUser stores the user and, for doctors, the doctor profile in the same transaction.
func (db *DB) InsertUser(user *models.User) (int, error) {
	tx, err := db.NewTx()
	if err != nil {
		return 0, errors.Wrap(err, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}

		tx.Commit()
	}()

	userID, newErr := db.insertUserTx(tx, user)
	if newErr != nil {
		err = newErr
		return 0, err
	}

	if user.Doctor != nil {
		if newErr := db.insertDoctorTx(tx, userID, user.Doctor); newErr != nil {
			err = newErr
			return 0, err
		}
	}

	return userID, nil
}

func (db *DB) insertUserTx(tx Tx, user *models.User) (int, error) {
	stmt, err := tx.PrepareNamed(insertUser)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"firstname":   user.Firstname,
		"lastname":    user.Lastname,
		"email":       user.Email,
		"password":    user.Password,
		"contact":     user.Contact,
		"age":         user.Age,
		"sex":         user.Sex,
		"blood_group": user.BloodGroup,
		"street":      user.Street,
		"city":        user.City,
		"pincode":     user.Pincode,
		"role":        user.Role,
		"status":      user.Status,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return 0, errors.Wrap(err, "failed inserting user")
	}

	if err := expectOneRow(result, "inserted"); err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	return int(id), nil
}

func (db *DB) insertDoctorTx(tx Tx, userID int, doctor *models.DoctorProfile) error {
	stmt, err := tx.PrepareNamed(insertDoctor)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"user_id":    userID,
		"speciality": doctor.Speciality,
		"experience": doctor.Experience,
		"fees":       doctor.Fees,
		"image_name": doctor.ImageName,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return errors.Wrap(err, "failed inserting doctor")
	}

	return expectOneRow(result, "inserted")
}

func (db *DB) GetUserByID(userID int) (*models.User, error) {
	return db.getUser(getUserByID, map[string]interface{}{
		"user_id": userID,
	})
}

func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return db.getUser(getUserByEmail, map[string]interface{}{
		"email": email,
	})
}

func (db *DB) getUser(query string, args map[string]interface{}) (*models.User, error) {
	stmt, err := db.PrepareNamed(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	user, err := scanUser(stmt.QueryRow(args))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

func (db *DB) CountUsersByEmail(email string) (int, error) {
	stmt, err := db.PrepareNamed(countUsersByEmail)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var counter int
	if err := stmt.QueryRow(map[string]interface{}{"email": email}).Scan(&counter); err != nil {
		return 0, err
	}

	return counter, nil
}

// GetUsersByRole lists users of role; an empty status matches every status.
func (db *DB) GetUsersByRole(role string, status string) ([]models.User, error) {
	return db.getUsers(getUsersByRole, map[string]interface{}{
		"role":   role,
		"status": status,
	})
}

func (db *DB) GetDoctorsBySpeciality(speciality string) ([]models.User, error) {
	return db.getUsers(getDoctorsBySpeciality, map[string]interface{}{
		"speciality": speciality,
	})
}

func (db *DB) getUsers(query string, args map[string]interface{}) ([]models.User, error) {
	stmt, err := db.PrepareNamed(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.Query(args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

func (db *DB) UpdateUserStatus(userID int, status string) error {
	stmt, err := db.PrepareNamed(updateUserStatus)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"user_id": userID,
		"status":  status,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return errors.Wrap(err, "failed updating user status")
	}

	return expectOneRow(result, "updated")
}
