package course

import "time"

// Student - зачисление пользователя на курс.
type Student struct {
	ID         int64  `json:"id"`
	CourseID   int64  `json:"courseId"`
	UserID     int64  `json:"userId"`
	User       Person `json:"user"`
	Course     Course `json:"course"`
	IsExpelled bool   `json:"isExpelled"`
	IsFailed   bool   `json:"isFailed"`
}

// Certifiable сообщает, может ли студент получить сертификат по умолчанию.
func (s Student) Certifiable() bool {
	return !s.IsExpelled && !s.IsFailed
}

// Certificate - запись для сервиса генерации сертификатов.
type Certificate struct {
	StudentID int64  `json:"studentId"`
	Course    string `json:"course"`
	Name      string `json:"name"`
	// Date - момент выдачи в Unix-миллисекундах.
	Date int64 `json:"date"`
}

// NewCertificate формирует сертификат студента на момент issuedAt.
func NewCertificate(s Student, issuedAt time.Time) Certificate {
	return Certificate{
		StudentID: s.ID,
		Course:    s.Course.CertificateTitle(),
		Name:      s.User.FirstName + " " + s.User.LastName,
		Date:      issuedAt.UnixMilli(),
	}
}
