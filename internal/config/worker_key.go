package config

type WorkerKeyStruct struct {
	PersistAnswersQueue string
	PersistReportsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue: "persist_answers_queue",
	PersistReportsQueue: "persist_reports_queue",
}
