package models

import (
	"time"

	"github.com/thedevsaddam/govalidator"
)

var ConstRoles = struct {
	Admin   string
	Doctor  string
	Patient string
}{
	Admin:   "ADMIN",
	Doctor:  "DOCTOR",
	Patient: "PATIENT",
}

var ConstUserStatuses = struct {
	Active  string
	Pending string
}{
	Active:  "ACTIVE",
	Pending: "PENDING",
}

// Specialities offered to patients when booking.
var Specialities = []string{
	"Physician",
	"Cardiologist",
	"Dermatologist",
	"ENT Specialist",
	"Gynecologist",
	"Neurologist",
	"Orthopedic",
	"Pediatrician",
	"Psychiatrist",
	"Radiologist",
}

type RegisterUserOpts struct {
	Firstname  string `json:"firstname"`
	Lastname   string `json:"lastname"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Contact    string `json:"contact"`
	Age        int    `json:"age"`
	Sex        string `json:"sex"`
	BloodGroup string `json:"blood_group"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Pincode    string `json:"pincode"`
}

var RegisterUserRules = govalidator.MapData{
	"firstname":   []string{"required"},
	"lastname":    []string{"required"},
	"email":       []string{"required", "email"},
	"password":    []string{"required", "min:6"},
	"contact":     []string{"required", "digits_between:10,13"},
	"age":         []string{"numeric"},
	"sex":         []string{"in:Male,Female,Other"},
	"blood_group": []string{},
	"street":      []string{},
	"city":        []string{},
	"pincode":     []string{},
}

type RegisterDoctorOpts struct {
	RegisterUserOpts
	Speciality string `json:"speciality"`
	Experience int    `json:"experience"`
	Fees       int    `json:"fees"`
}

var RegisterDoctorRules = govalidator.MapData{
	"firstname":  []string{"required"},
	"lastname":   []string{"required"},
	"email":      []string{"required", "email"},
	"password":   []string{"required", "min:6"},
	"contact":    []string{"required", "digits_between:10,13"},
	"speciality": []string{"required", "speciality"},
	"experience": []string{"numeric"},
	"fees":       []string{"numeric"},
}

type InfoUser struct {
	ID        int
	Email     string
	Role      string
	IsAdmin   bool
	IsDoctor  bool
	IsPatient bool
}

type User struct {
	ID         int    `json:"id,omitempty"`
	Firstname  string `json:"firstname,omitempty"`
	Lastname   string `json:"lastname,omitempty"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"-"`
	Contact    string `json:"contact,omitempty"`
	Age        int    `json:"age,omitempty"`
	Sex        string `json:"sex,omitempty"`
	BloodGroup string `json:"blood_group,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Pincode    string `json:"pincode,omitempty"`
	Role       string `json:"role"`
	Status     string `json:"status"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	Token  string         `json:"token,omitempty"`
	Doctor *DoctorProfile `json:"doctor,omitempty"`
}

func (user *User) FullName() string {
	if user.Lastname == "" {
		return user.Firstname
	}
	return user.Firstname + " " + user.Lastname
}

func (user *User) IsActive() bool {
	return user.Status == ConstUserStatuses.Active
}

type DoctorProfile struct {
	Speciality string `json:"speciality"`
	Experience int    `json:"experience"`
	Fees       int    `json:"fees"`
	ImageName  string `json:"image_name,omitempty"`
}

type DoctorDetails struct {
	ID         int    `json:"id"`
	Firstname  string `json:"firstName"`
	Lastname   string `json:"lastName"`
	Speciality string `json:"specialization"`
}
