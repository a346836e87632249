package config

type WorkerKeyStruct struct {
	ResetMailQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ResetMailQueue: "reset_mail_queue",
}
