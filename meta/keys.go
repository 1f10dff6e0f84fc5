package meta

// FileKey is the key of a file's base record.
// Per-service keys of the file share it as a prefix.
func FileKey(fid string) string {
	return "file:" + fid
}

// OwnerKey marks service as an owner of a file.
func OwnerKey(fid, service string) string {
	return FileKey(fid) + ":owner:" + service
}

// UptodateKey marks service as up to date for a file.
func UptodateKey(fid, service string) string {
	return FileKey(fid) + ":uptodate:" + service
}

// ExtraKey holds service's private state for a file.
func ExtraKey(fid, service string) string {
	return FileKey(fid) + ":extra:" + service
}

// PathKey is the path index entry of a file.
func PathKey(folderName, filename string) string {
	return "path:" + folderName + ":" + filename
}

// ServicePrefix is the prefix of every key private to a service.
func ServicePrefix(service string) string {
	return "service:" + service + ":"
}

// TransferPrefix is the prefix of a service's transfer records.
func TransferPrefix(service string) string {
	return ServicePrefix(service) + "transfer:"
}

// TransferKey is the key of the transfer record of (service, fid).
func TransferKey(service, fid string) string {
	return TransferPrefix(service) + fid
}

// EventPrefix is the prefix of a service's event queue.
func EventPrefix(service string) string {
	return ServicePrefix(service) + "event:"
}

// RouterKey holds the network address of a service's router.
func RouterKey(service string) string {
	return ServicePrefix(service) + "router"
}

// ChangePrefix is the prefix of the Referee's queue.
const ChangePrefix = "referee:change:"
