package dataservice

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain/patient"
)

// Dataset is a full snapshot of the clinic's data.
type Dataset struct {
	Specialties  []doctor.Specialty
	Doctors      []doctor.Doctor
	Appointments []appointment.Appointment
	Patients     []patient.Patient
}

// Validate checks referential integrity: doctors reference specialties and
// appointments reference doctors.
func (d Dataset) Validate() error {
	specialties := make(map[int]bool, len(d.Specialties))
	for _, s := range d.Specialties {
		specialties[s.ID] = true
	}
	doctors := make(map[int]bool, len(d.Doctors))
	for _, doc := range d.Doctors {
		if !specialties[doc.SpecialtyID] {
			return fmt.Errorf("doctor %d: %w (specialty %d)", doc.ID, doctor.ErrSpecialtyNotFound, doc.SpecialtyID)
		}
		doctors[doc.ID] = true
	}
	for _, a := range d.Appointments {
		if !doctors[a.DoctorID] {
			return fmt.Errorf("appointment %s: %w (doctor %d)", a.ID, doctor.ErrDoctorNotFound, a.DoctorID)
		}
	}
	return nil
}

const placeholderImage = "/placeholder.svg?height=100&width=100"

// Seed returns the clinic's reference data set. Each call builds fresh slices.
func Seed() Dataset {
	return Dataset{
		Specialties:  seedSpecialties(),
		Doctors:      seedDoctors(),
		Appointments: seedAppointments(),
		Patients:     seedPatients(),
	}
}

func seedSpecialties() []doctor.Specialty {
	return []doctor.Specialty{
		{ID: 1, Name: "Cardiology", Description: "Heart and cardiovascular system"},
		{ID: 2, Name: "Dermatology", Description: "Skin, hair, and nail conditions"},
		{ID: 3, Name: "Endocrinology", Description: "Hormones and metabolism"},
		{ID: 4, Name: "Gastroenterology", Description: "Digestive system"},
		{ID: 5, Name: "Neurology", Description: "Brain and nervous system"},
		{ID: 6, Name: "Orthopedics", Description: "Bones, joints, and muscles"},
		{ID: 7, Name: "Pediatrics", Description: "Children's health"},
		{ID: 8, Name: "Psychiatry", Description: "Mental health"},
		{ID: 9, Name: "Radiology", Description: "Medical imaging"},
		{ID: 10, Name: "Urology", Description: "Urinary system"},
	}
}

func seedDoctors() []doctor.Doctor {
	d := func(id int, name string, specialtyID int, specialty, experience string, rating float64, availability string) doctor.Doctor {
		return doctor.Doctor{
			ID: id, Name: name, SpecialtyID: specialtyID, Specialty: specialty,
			Experience: experience, Rating: rating, Availability: availability, Image: placeholderImage,
		}
	}
	return []doctor.Doctor{
		d(1, "Dr. Sarah Johnson", 1, "Cardiology", "15 years", 4.8, "Mon-Fri 9AM-5PM"),
		d(2, "Dr. Michael Chen", 1, "Cardiology", "12 years", 4.9, "Tue-Sat 10AM-6PM"),
		d(3, "Dr. Emily Rodriguez", 2, "Dermatology", "10 years", 4.7, "Mon-Wed-Fri 8AM-4PM"),
		d(4, "Dr. James Wilson", 2, "Dermatology", "18 years", 4.6, "Mon-Thu 9AM-5PM"),
		d(5, "Dr. Lisa Thompson", 3, "Endocrinology", "14 years", 4.8, "Tue-Thu 9AM-3PM"),
		d(6, "Dr. Robert Kim", 4, "Gastroenterology", "16 years", 4.9, "Mon-Fri 8AM-4PM"),
		d(7, "Dr. Amanda Davis", 5, "Neurology", "13 years", 4.7, "Wed-Fri 10AM-6PM"),
		d(8, "Dr. David Martinez", 6, "Orthopedics", "20 years", 4.8, "Mon-Fri 7AM-3PM"),
		d(9, "Dr. Jennifer Lee", 6, "Orthopedics", "11 years", 4.6, "Tue-Sat 9AM-5PM"),
		d(10, "Dr. Christopher Brown", 7, "Pediatrics", "17 years", 4.9, "Mon-Fri 8AM-6PM"),
	}
}

func seedAppointments() []appointment.Appointment {
	return []appointment.Appointment{
		{
			ID: "APT001", DoctorID: 1, PatientName: "John Smith", PatientEmail: "john.smith@email.com",
			PatientPhone: "+1 (555) 123-4567", Date: "2024-01-15", Time: "9:00 AM", Reason: "Regular checkup",
			Status: appointment.StatusConfirmed, Type: appointment.TypeConsultation, CreatedAt: seedTime("2024-01-10T10:00:00Z"),
		},
		{
			ID: "APT002", DoctorID: 1, PatientName: "Sarah Johnson", PatientEmail: "sarah.j@email.com",
			PatientPhone: "+1 (555) 987-6543", Date: "2024-01-15", Time: "10:30 AM", Reason: "Follow-up appointment",
			Status: appointment.StatusConfirmed, Type: appointment.TypeFollowUp, CreatedAt: seedTime("2024-01-12T14:30:00Z"),
		},
		{
			ID: "APT003", DoctorID: 1, PatientName: "Michael Brown", PatientEmail: "m.brown@email.com",
			PatientPhone: "+1 (555) 456-7890", Date: "2024-01-16", Time: "2:00 PM", Reason: "Chest pain evaluation",
			Status: appointment.StatusPending, Type: appointment.TypeConsultation, CreatedAt: seedTime("2024-01-13T09:15:00Z"),
		},
		{
			ID: "APT004", DoctorID: 1, PatientName: "Emily Davis", PatientEmail: "emily.davis@email.com",
			PatientPhone: "+1 (555) 321-0987", Date: "2024-01-17", Time: "11:00 AM", Reason: "Medication review",
			Status: appointment.StatusConfirmed, Type: appointment.TypeConsultation, CreatedAt: seedTime("2024-01-14T16:45:00Z"),
		},
		{
			ID: "APT005", DoctorID: 1, PatientName: "Robert Wilson", PatientEmail: "r.wilson@email.com",
			PatientPhone: "+1 (555) 654-3210", Date: "2024-01-12", Time: "3:30 PM", Reason: "Post-surgery checkup",
			Status: appointment.StatusCompleted, Type: appointment.TypeFollowUp, CreatedAt: seedTime("2024-01-08T11:20:00Z"),
		},
		{
			ID: "APT006", DoctorID: 2, PatientName: "Lisa Anderson", PatientEmail: "lisa.a@email.com",
			PatientPhone: "+1 (555) 789-0123", Date: "2024-01-15", Time: "9:30 AM", Reason: "Skin examination",
			Status: appointment.StatusConfirmed, Type: appointment.TypeConsultation, CreatedAt: seedTime("2024-01-11T13:00:00Z"),
		},
	}
}

func seedPatients() []patient.Patient {
	return []patient.Patient{
		{
			ID: "PAT001", Name: "John Smith", Email: "john.smith@email.com", Phone: "+1 (555) 123-4567",
			DateOfBirth: "1985-03-15", Gender: "Male", Address: "123 Main St, New York, NY 10001",
			EmergencyContact: patient.EmergencyContact{Name: "Jane Smith", Relationship: "Spouse", Phone: "+1 (555) 123-4568"},
			MedicalInfo: patient.MedicalInfo{
				BloodType:          "O+",
				Allergies:          []string{"Penicillin", "Shellfish"},
				ChronicConditions:  []string{"Hypertension"},
				CurrentMedications: []string{"Lisinopril 10mg", "Aspirin 81mg"},
			},
			Insurance: patient.Insurance{Provider: "Blue Cross Blue Shield", PolicyNumber: "BC123456789", GroupNumber: "GRP001"},
			Appointments: []patient.AppointmentRecord{
				{
					ID: "APT001", DoctorID: 1, Date: "2024-01-15", Time: "9:00 AM", Reason: "Regular checkup",
					Status: appointment.StatusConfirmed, Type: appointment.TypeConsultation,
					Notes:     "Patient reports feeling well. Blood pressure slightly elevated.",
					Diagnosis: "Hypertension - well controlled", Treatment: "Continue current medication", FollowUp: "3 months",
				},
				{
					ID: "APT007", DoctorID: 1, Date: "2023-10-15", Time: "10:00 AM", Reason: "Follow-up for hypertension",
					Status: appointment.StatusCompleted, Type: appointment.TypeFollowUp,
					Notes:     "Blood pressure improved. Patient compliant with medication.",
					Diagnosis: "Hypertension - improving", Treatment: "Continue Lisinopril, add low-dose aspirin", FollowUp: "3 months",
				},
				{
					ID: "APT008", DoctorID: 1, Date: "2023-07-20", Time: "2:30 PM", Reason: "Initial consultation for chest pain",
					Status: appointment.StatusCompleted, Type: appointment.TypeConsultation,
					Notes:     "Patient presented with chest discomfort. EKG normal. Stress test recommended.",
					Diagnosis: "Atypical chest pain", Treatment: "Lifestyle modifications, stress test ordered", FollowUp: "2 weeks",
				},
			},
		},
		{
			ID: "PAT002", Name: "Sarah Johnson", Email: "sarah.j@email.com", Phone: "+1 (555) 987-6543",
			DateOfBirth: "1990-07-22", Gender: "Female", Address: "456 Oak Ave, Brooklyn, NY 11201",
			EmergencyContact: patient.EmergencyContact{Name: "Michael Johnson", Relationship: "Brother", Phone: "+1 (555) 987-6544"},
			MedicalInfo: patient.MedicalInfo{
				BloodType:          "A-",
				Allergies:          []string{"Latex"},
				ChronicConditions:  []string{},
				CurrentMedications: []string{"Multivitamin"},
			},
			Insurance: patient.Insurance{Provider: "Aetna", PolicyNumber: "AET987654321", GroupNumber: "GRP002"},
			Appointments: []patient.AppointmentRecord{
				{
					ID: "APT002", DoctorID: 1, Date: "2024-01-15", Time: "10:30 AM", Reason: "Follow-up appointment",
					Status: appointment.StatusConfirmed, Type: appointment.TypeFollowUp,
					Notes: "Routine follow-up. Patient doing well.", Diagnosis: "Healthy",
					Treatment: "Continue current lifestyle", FollowUp: "1 year",
				},
				{
					ID: "APT009", DoctorID: 1, Date: "2023-01-15", Time: "11:00 AM", Reason: "Annual physical",
					Status: appointment.StatusCompleted, Type: appointment.TypeConsultation,
					Notes:     "Complete physical examination. All vitals normal. Lab work ordered.",
					Diagnosis: "Healthy adult", Treatment: "Continue healthy lifestyle", FollowUp: "1 year",
				},
			},
		},
		{
			ID: "PAT003", Name: "Michael Brown", Email: "m.brown@email.com", Phone: "+1 (555) 456-7890",
			DateOfBirth: "1978-11-08", Gender: "Male", Address: "789 Pine St, Queens, NY 11375",
			EmergencyContact: patient.EmergencyContact{Name: "Lisa Brown", Relationship: "Wife", Phone: "+1 (555) 456-7891"},
			MedicalInfo: patient.MedicalInfo{
				BloodType:          "B+",
				Allergies:          []string{"Sulfa drugs"},
				ChronicConditions:  []string{"Type 2 Diabetes", "High Cholesterol"},
				CurrentMedications: []string{"Metformin 500mg", "Atorvastatin 20mg"},
			},
			Insurance: patient.Insurance{Provider: "UnitedHealthcare", PolicyNumber: "UHC456789123", GroupNumber: "GRP003"},
			Appointments: []patient.AppointmentRecord{
				{
					ID: "APT003", DoctorID: 1, Date: "2024-01-16", Time: "2:00 PM", Reason: "Chest pain evaluation",
					Status: appointment.StatusPending, Type: appointment.TypeConsultation,
				},
				{
					ID: "APT010", DoctorID: 1, Date: "2023-12-10", Time: "9:30 AM", Reason: "Diabetes management",
					Status: appointment.StatusCompleted, Type: appointment.TypeFollowUp,
					Notes:     "HbA1c improved to 7.2%. Patient reports better glucose control.",
					Diagnosis: "Type 2 Diabetes - well controlled", Treatment: "Continue Metformin, dietary counseling", FollowUp: "3 months",
				},
			},
		},
	}
}

func seedTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(fmt.Sprintf("dataservice: bad seed timestamp %q", s))
	}
	return t
}
