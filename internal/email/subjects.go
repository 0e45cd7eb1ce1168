package email

const subjectWelcome = "Welcome to Restockd"
