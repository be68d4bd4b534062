package middlewares

var Responses = struct {
	FailedValidations   *NewRM
	InternalServerError *NewRM
	UserNotFound        *NewRM
	InvalidCredentials  *NewRM
	InvalidRoles        *NewRM
	EmailExists         *NewRM
	DoctorNotVerified   *NewRM
	AppointmentNotFound *NewRM
	ImageNotFound       *NewRM
}{
	FailedValidations: &NewRM{
		Language.English: "Failed field validations",
		Language.Hindi:   "फ़ील्ड सत्यापन विफल रहा",
	},
	InternalServerError: &NewRM{
		Language.English: "Internal server error",
		Language.Hindi:   "सर्वर में समस्या है",
	},
	UserNotFound: &NewRM{
		Language.English: "User not found",
		Language.Hindi:   "उपयोगकर्ता नहीं मिला",
	},
	InvalidCredentials: &NewRM{
		Language.English: "Invalid email or password",
		Language.Hindi:   "ईमेल या पासवर्ड गलत है",
	},
	InvalidRoles: &NewRM{
		Language.English: "Invalid roles",
		Language.Hindi:   "आपको यह कार्य करने की अनुमति नहीं है",
	},
	EmailExists: &NewRM{
		Language.English: "Email already registered",
		Language.Hindi:   "ईमेल पहले से पंजीकृत है",
	},
	DoctorNotVerified: &NewRM{
		Language.English: "Doctor account is pending verification",
		Language.Hindi:   "डॉक्टर खाते का सत्यापन लंबित है",
	},
	AppointmentNotFound: &NewRM{
		Language.English: "Appointment not found",
		Language.Hindi:   "अपॉइंटमेंट नहीं मिला",
	},
	ImageNotFound: &NewRM{
		Language.English: "Image not found",
		Language.Hindi:   "छवि नहीं मिली",
	},
}

type NewRM map[string]string

// In returns the message in lang, falling back to English.
func (rm *NewRM) In(lang string) string {
	if msg, ok := (*rm)[lang]; ok {
		return msg
	}
	return (*rm)[Language.English]
}

var Language = struct {
	English string
	Hindi   string
}{
	English: "en",
	Hindi:   "hi",
}

var LanguageMap = map[string]string{
	Language.Hindi:   "Hindi",
	Language.English: "English",
}
