package repository

// schemaStatements create the employee database when it does not exist yet.
// Existing tables are left untouched.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS Departments (
		DepartmentID INTEGER PRIMARY KEY AUTOINCREMENT,
		DepartmentName TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS Jobs (
		JobID INTEGER PRIMARY KEY AUTOINCREMENT,
		JobRole TEXT NOT NULL UNIQUE,
		JobLevel INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS EducationFields (
		EducationFieldID INTEGER PRIMARY KEY AUTOINCREMENT,
		FieldName TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS Employees (
		EmployeeID INTEGER PRIMARY KEY AUTOINCREMENT,
		Age INTEGER,
		Gender TEXT,
		MaritalStatus TEXT,
		BusinessTravel TEXT,
		DailyRate INTEGER,
		DepartmentID INTEGER REFERENCES Departments(DepartmentID),
		JobID INTEGER REFERENCES Jobs(JobID),
		EducationFieldID INTEGER REFERENCES EducationFields(EducationFieldID),
		MonthlyIncome INTEGER,
		OverTime TEXT,
		TotalWorkingYears INTEGER,
		JobSatisfaction INTEGER,
		EnvironmentSatisfaction INTEGER,
		Attrition TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_department ON Employees(DepartmentID)`,
}

// snapshotQuery joins every employee with its department, job and education
// field names. Column names become snapshot columns.
const snapshotQuery = `
SELECT
	e.*,
	d.DepartmentName,
	j.JobRole,
	j.JobLevel,
	ef.FieldName AS EducationField
FROM Employees e
LEFT JOIN Departments d ON e.DepartmentID = d.DepartmentID
LEFT JOIN Jobs j ON e.JobID = j.JobID
LEFT JOIN EducationFields ef ON e.EducationFieldID = ef.EducationFieldID
ORDER BY e.EmployeeID`

const listEmployeesQuery = `
SELECT
	e.EmployeeID,
	e.Age,
	e.Gender,
	e.MaritalStatus,
	d.DepartmentName,
	j.JobRole,
	e.MonthlyIncome,
	e.OverTime,
	e.Attrition
FROM Employees e
LEFT JOIN Departments d ON e.DepartmentID = d.DepartmentID
LEFT JOIN Jobs j ON e.JobID = j.JobID
ORDER BY e.EmployeeID
LIMIT ?`

const insertEmployeeQuery = `
INSERT INTO Employees (
	DepartmentID, JobID, MonthlyIncome, OverTime,
	Age, Gender, MaritalStatus, BusinessTravel, DailyRate,
	TotalWorkingYears, JobSatisfaction, EnvironmentSatisfaction, Attrition
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// columnKind is the value an updatable column accepts.
type columnKind int

const (
	kindText columnKind = iota
	kindInteger
	kindIncome
	kindReference
)

// column describes one updatable Employees column. Required columns cannot
// be set to null; references must name an existing row of refTable.
type column struct {
	kind     columnKind
	required bool
	refTable string
	refKey   string
}

// updatableFields are the Employees columns UpdateField may set.
var updatableFields = map[string]column{
	"Age":                     {kind: kindInteger},
	"Gender":                  {kind: kindText},
	"MaritalStatus":           {kind: kindText},
	"BusinessTravel":          {kind: kindText},
	"DailyRate":               {kind: kindInteger},
	"DepartmentID":            {kind: kindReference, required: true, refTable: "Departments", refKey: "DepartmentID"},
	"JobID":                   {kind: kindReference, required: true, refTable: "Jobs", refKey: "JobID"},
	"EducationFieldID":        {kind: kindReference, refTable: "EducationFields", refKey: "EducationFieldID"},
	"MonthlyIncome":           {kind: kindIncome, required: true},
	"OverTime":                {kind: kindText, required: true},
	"TotalWorkingYears":       {kind: kindInteger},
	"JobSatisfaction":         {kind: kindInteger},
	"EnvironmentSatisfaction": {kind: kindInteger},
	"Attrition":               {kind: kindText},
}
