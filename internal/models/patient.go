package models

// Patient is the demographic and clinical record kept in the patients
// collection. A Case embeds a copy taken at creation time; later edits to
// the live record do not reach the embedded copy.
type Patient struct {
	ID                 string   `json:"id" bson:"_id,omitempty"`
	Name               string   `json:"name" bson:"name"`
	Age                int      `json:"age" bson:"age"`
	Gender             string   `json:"gender" bson:"gender"`
	BloodType          string   `json:"bloodType" bson:"bloodType"`
	MedicalHistory     []string `json:"medicalHistory" bson:"medicalHistory"`
	CurrentMedications []string `json:"currentMedications" bson:"currentMedications"`
	DoctorNotes        string   `json:"doctorNotes" bson:"doctorNotes"`
}
