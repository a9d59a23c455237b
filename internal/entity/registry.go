package entity

// registry.go declares every resource family the API serves. The catalog
// mirrors the clinical schema: patients and doctors are leaves, everything
// else references them or each other by id. Foreign-key validation is
// uniform across all families; nullable references (e.g. payments.invoice_id)
// are only validated when a value is supplied.

// DefaultRegistry returns the full resource catalog in mount order.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&Descriptor{
			Label: "Patient",
			Table: "patients",
			Path:  "/patients",
			Fields: []Field{
				{Name: "first_name", Kind: KindString, Required: true},
				{Name: "last_name", Kind: KindString, Required: true},
				{Name: "email", Kind: KindString},
				{Name: "phone", Kind: KindString},
				{Name: "date_of_birth", Kind: KindDate, Required: true},
				{Name: "gender", Kind: KindString, Required: true},
				{Name: "address", Kind: KindString},
				{Name: "emergency_contact_name", Kind: KindString},
				{Name: "emergency_contact_phone", Kind: KindString},
			},
		},
		&Descriptor{
			Label: "Doctor",
			Table: "doctors",
			Path:  "/doctors",
			Fields: []Field{
				{Name: "first_name", Kind: KindString, Required: true},
				{Name: "last_name", Kind: KindString, Required: true},
				{Name: "email", Kind: KindString},
				{Name: "phone", Kind: KindString},
				{Name: "specialization", Kind: KindString, Required: true},
				{Name: "license_number", Kind: KindString, Required: true},
				{Name: "years_of_experience", Kind: KindInt},
				{Name: "bio", Kind: KindString},
			},
		},
		&Descriptor{
			Label: "Appointment",
			Table: "appointments",
			Path:  "/appointments",
			Fields: []Field{
				{Name: "patient_id", Kind: KindInt, Required: true},
				{Name: "doctor_id", Kind: KindInt, Required: true},
				{Name: "appointment_datetime", Kind: KindTime, Required: true},
				{Name: "duration_minutes", Kind: KindInt, Default: int64(30)},
				{Name: "status", Kind: KindString, Default: "scheduled"},
				{Name: "reason", Kind: KindString},
				{Name: "notes", Kind: KindString},
			},
			References: []Reference{
				{Field: "patient_id", Table: "patients", Label: "Patient"},
				{Field: "doctor_id", Table: "doctors", Label: "Doctor"},
			},
			Relations: []Relation{
				{Name: "patient", Field: "patient_id", Table: "patients"},
				{Name: "doctor", Field: "doctor_id", Table: "doctors"},
			},
		},
		&Descriptor{
			Label: "Medical record",
			Table: "medical_records",
			Path:  "/medical_records",
			Fields: []Field{
				{Name: "patient_id", Kind: KindInt, Required: true},
				{Name: "doctor_id", Kind: KindInt, Required: true},
				{Name: "visit_date", Kind: KindTime, Required: true},
				{Name: "diagnosis", Kind: KindString},
				{Name: "symptoms", Kind: KindString},
				{Name: "treatment", Kind: KindString},
				{Name: "prescription", Kind: KindString},
				{Name: "notes", Kind: KindString},
				{Name: "blood_pressure_systolic", Kind: KindInt},
				{Name: "blood_pressure_diastolic", Kind: KindInt},
				{Name: "heart_rate", Kind: KindInt},
				{Name: "temperature", Kind: KindFloat},
				{Name: "weight", Kind: KindFloat},
				{Name: "height", Kind: KindFloat},
			},
			References: []Reference{
				{Field: "patient_id", Table: "patients", Label: "Patient"},
				{Field: "doctor_id", Table: "doctors", Label: "Doctor"},
			},
			Relations: []Relation{
				{Name: "patient", Field: "patient_id", Table: "patients"},
				{Name: "doctor", Field: "doctor_id", Table: "doctors"},
			},
		},
		&Descriptor{
			Label: "Insurance plan",
			Table: "insurance_plans",
			Path:  "/insurance/plans",
			Fields: []Field{
				{Name: "name", Kind: KindString, Required: true},
				{Name: "provider", Kind: KindString, Required: true},
				{Name: "coverage_details", Kind: KindString},
			},
		},
		&Descriptor{
			Label: "Insurance claim",
			Table: "insurance_claims",
			Path:  "/insurance/claims",
			Fields: []Field{
				{Name: "patient_id", Kind: KindInt, Required: true},
				{Name: "plan_id", Kind: KindInt, Required: true},
				{Name: "claim_date", Kind: KindDate, Required: true},
				{Name: "amount", Kind: KindFloat, Required: true},
				{Name: "status", Kind: KindString, Default: "pending"},
				{Name: "details", Kind: KindString},
			},
			References: []Reference{
				{Field: "patient_id", Table: "patients", Label: "Patient"},
				{Field: "plan_id", Table: "insurance_plans", Label: "Insurance plan"},
			},
			Relations: []Relation{
				{Name: "patient", Field: "patient_id", Table: "patients"},
				{Name: "plan", Field: "plan_id", Table: "insurance_plans"},
			},
		},
		&Descriptor{
			Label: "Invoice",
			Table: "invoices",
			Path:  "/insurance/invoices",
			Fields: []Field{
				{Name: "patient_id", Kind: KindInt, Required: true},
				{Name: "total_amount", Kind: KindFloat, Required: true},
				{Name: "issue_date", Kind: KindDate, Required: true},
				{Name: "due_date", Kind: KindDate},
				{Name: "status", Kind: KindString, Default: "unpaid"},
				{Name: "details", Kind: KindString},
			},
			References: []Reference{
				{Field: "patient_id", Table: "patients", Label: "Patient"},
			},
			Relations: []Relation{
				{Name: "patient", Field: "patient_id", Table: "patients"},
			},
		},
		&Descriptor{
			Label: "Payment",
			Table: "payments",
			Path:  "/insurance/payments",
			Fields: []Field{
				{Name: "patient_id", Kind: KindInt, Required: true},
				{Name: "amount", Kind: KindFloat, Required: true},
				{Name: "payment_date", Kind: KindDate, Required: true},
				{Name: "method", Kind: KindString},
				{Name: "invoice_id", Kind: KindInt},
			},
			References: []Reference{
				{Field: "patient_id", Table: "patients", Label: "Patient"},
				{Field: "invoice_id", Table: "invoices", Label: "Invoice"},
			},
			Relations: []Relation{
				{Name: "patient", Field: "patient_id", Table: "patients"},
				{Name: "invoice", Field: "invoice_id", Table: "invoices"},
			},
		},
		&Descriptor{
			Label: "Lab order",
			Table: "lab_orders",
			Path:  "/lab/orders",
			Fields: []Field{
				{Name: "patient_id", Kind: KindInt, Required: true},
				{Name: "doctor_id", Kind: KindInt, Required: true},
				{Name: "order_date", Kind: KindDate, Required: true},
				{Name: "test_type", Kind: KindString, Required: true},
				{Name: "status", Kind: KindString, Default: "ordered"},
				{Name: "notes", Kind: KindString},
			},
			References: []Reference{
				{Field: "patient_id", Table: "patients", Label: "Patient"},
				{Field: "doctor_id", Table: "doctors", Label: "Doctor"},
			},
			Relations: []Relation{
				{Name: "patient", Field: "patient_id", Table: "patients"},
				{Name: "doctor", Field: "doctor_id", Table: "doctors"},
			},
		},
		&Descriptor{
			Label: "Lab result",
			Table: "lab_results",
			Path:  "/lab/results",
			Fields: []Field{
				{Name: "lab_order_id", Kind: KindInt, Required: true},
				{Name: "result_date", Kind: KindDate, Required: true},
				{Name: "result_data", Kind: KindString},
				{Name: "status", Kind: KindString, Default: "pending"},
			},
			References: []Reference{
				{Field: "lab_order_id", Table: "lab_orders", Label: "Lab order"},
			},
			Relations: []Relation{
				{Name: "lab_order", Field: "lab_order_id", Table: "lab_orders"},
			},
		},
		&Descriptor{
			Label: "Diagnostic image",
			Table: "diagnostic_images",
			Path:  "/lab/images",
			Fields: []Field{
				{Name: "lab_order_id", Kind: KindInt, Required: true},
				{Name: "image_url", Kind: KindString, Required: true},
				{Name: "description", Kind: KindString},
			},
			References: []Reference{
				{Field: "lab_order_id", Table: "lab_orders", Label: "Lab order"},
			},
			Relations: []Relation{
				{Name: "lab_order", Field: "lab_order_id", Table: "lab_orders"},
			},
		},
		&Descriptor{
			Label: "Medication",
			Table: "medications",
			Path:  "/pharmacy/medications",
			Fields: []Field{
				{Name: "name", Kind: KindString, Required: true},
				{Name: "description", Kind: KindString},
				{Name: "manufacturer", Kind: KindString},
			},
		},
		&Descriptor{
			Label: "Prescription",
			Table: "prescriptions",
			Path:  "/pharmacy/prescriptions",
			Fields: []Field{
				{Name: "patient_id", Kind: KindInt, Required: true},
				{Name: "doctor_id", Kind: KindInt, Required: true},
				{Name: "medication_id", Kind: KindInt, Required: true},
				{Name: "dosage", Kind: KindString},
				{Name: "frequency", Kind: KindString},
				{Name: "duration", Kind: KindString},
				{Name: "instructions", Kind: KindString},
				{Name: "issue_date", Kind: KindDate, Required: true},
			},
			References: []Reference{
				{Field: "patient_id", Table: "patients", Label: "Patient"},
				{Field: "doctor_id", Table: "doctors", Label: "Doctor"},
				{Field: "medication_id", Table: "medications", Label: "Medication"},
			},
			Relations: []Relation{
				{Name: "patient", Field: "patient_id", Table: "patients"},
				{Name: "doctor", Field: "doctor_id", Table: "doctors"},
				{Name: "medication", Field: "medication_id", Table: "medications"},
			},
		},
		&Descriptor{
			Label: "Pharmacy order",
			Table: "pharmacy_orders",
			Path:  "/pharmacy/orders",
			Fields: []Field{
				{Name: "prescription_id", Kind: KindInt, Required: true},
				{Name: "order_date", Kind: KindDate, Required: true},
				{Name: "status", Kind: KindString, Default: "pending"},
				{Name: "notes", Kind: KindString},
			},
			References: []Reference{
				{Field: "prescription_id", Table: "prescriptions", Label: "Prescription"},
			},
			Relations: []Relation{
				{Name: "prescription", Field: "prescription_id", Table: "prescriptions"},
			},
		},
		&Descriptor{
			Label: "Referral status",
			Table: "referral_statuses",
			Path:  "/referral/statuses",
			Fields: []Field{
				{Name: "status", Kind: KindString, Required: true},
				{Name: "description", Kind: KindString},
			},
		},
		&Descriptor{
			Label: "Referral request",
			Table: "referral_requests",
			Path:  "/referral/requests",
			Fields: []Field{
				{Name: "patient_id", Kind: KindInt, Required: true},
				{Name: "referring_doctor_id", Kind: KindInt, Required: true},
				{Name: "specialist_id", Kind: KindInt, Required: true},
				{Name: "request_date", Kind: KindDate, Required: true},
				{Name: "reason", Kind: KindString},
				{Name: "status_id", Kind: KindInt},
			},
			References: []Reference{
				{Field: "patient_id", Table: "patients", Label: "Patient"},
				{Field: "referring_doctor_id", Table: "doctors", Label: "Doctor"},
				{Field: "specialist_id", Table: "doctors", Label: "Doctor"},
				{Field: "status_id", Table: "referral_statuses", Label: "Referral status"},
			},
			Relations: []Relation{
				{Name: "patient", Field: "patient_id", Table: "patients"},
				{Name: "referring_doctor", Field: "referring_doctor_id", Table: "doctors"},
				{Name: "specialist", Field: "specialist_id", Table: "doctors"},
				{Name: "status", Field: "status_id", Table: "referral_statuses"},
			},
		},
		&Descriptor{
			Label: "Specialist note",
			Table: "specialist_notes",
			Path:  "/referral/notes",
			Fields: []Field{
				{Name: "referral_request_id", Kind: KindInt, Required: true},
				{Name: "note", Kind: KindString},
			},
			References: []Reference{
				{Field: "referral_request_id", Table: "referral_requests", Label: "Referral request"},
			},
			Relations: []Relation{
				{Name: "referral_request", Field: "referral_request_id", Table: "referral_requests"},
			},
		},
		&Descriptor{
			Label: "Virtual visit",
			Table: "virtual_visits",
			Path:  "/telemedicine/visits",
			Fields: []Field{
				{Name: "patient_id", Kind: KindInt, Required: true},
				{Name: "doctor_id", Kind: KindInt, Required: true},
				{Name: "scheduled_time", Kind: KindTime, Required: true},
				{Name: "status", Kind: KindString, Default: "scheduled"},
				{Name: "meeting_link", Kind: KindString},
				{Name: "notes", Kind: KindString},
			},
			References: []Reference{
				{Field: "patient_id", Table: "patients", Label: "Patient"},
				{Field: "doctor_id", Table: "doctors", Label: "Doctor"},
			},
			Relations: []Relation{
				{Name: "patient", Field: "patient_id", Table: "patients"},
				{Name: "doctor", Field: "doctor_id", Table: "doctors"},
			},
		},
		&Descriptor{
			Label: "Chat log",
			Table: "chat_logs",
			Path:  "/telemedicine/chats",
			Fields: []Field{
				{Name: "virtual_visit_id", Kind: KindInt, Required: true},
				// sender can be a patient or a doctor, so this is a bare id
				// rather than a declared reference.
				{Name: "sender_id", Kind: KindInt, Required: true},
				{Name: "message", Kind: KindString},
			},
			References: []Reference{
				{Field: "virtual_visit_id", Table: "virtual_visits", Label: "Virtual visit"},
			},
			Relations: []Relation{
				{Name: "virtual_visit", Field: "virtual_visit_id", Table: "virtual_visits"},
			},
		},
		&Descriptor{
			Label: "Video session",
			Table: "video_sessions",
			Path:  "/telemedicine/videos",
			Fields: []Field{
				{Name: "virtual_visit_id", Kind: KindInt, Required: true},
				{Name: "session_id", Kind: KindString, Required: true},
				{Name: "started_at", Kind: KindTime},
				{Name: "ended_at", Kind: KindTime},
				{Name: "recording_url", Kind: KindString},
			},
			References: []Reference{
				{Field: "virtual_visit_id", Table: "virtual_visits", Label: "Virtual visit"},
			},
			Relations: []Relation{
				{Name: "virtual_visit", Field: "virtual_visit_id", Table: "virtual_visits"},
			},
		},
	)
}
