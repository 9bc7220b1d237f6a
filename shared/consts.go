package shared

const (
	// OwnerReadWriteExec is a standard owner read / write / exec file permission.
	OwnerReadWriteExec = 0o700

	// OwnerReadWrite is a standard owner read / write file permission.
	OwnerReadWrite = 0o600
)
