package domain

// Dataset names shared by the local store and the master document.
const (
	DatasetClients                 = "clients"
	DatasetContacts                = "contacts"
	DatasetCentres                 = "centres"
	DatasetFramingMaterials        = "framingMaterials"
	DatasetFinishMaterials         = "finishMaterials"
	DatasetProjects                = "projects"
	DatasetDefaultCostingVariables = "defaultCostingVariables"
	DatasetUsers                   = "users"
	DatasetProductionLogs          = "productionLogs"
	DatasetLocationExpenses        = "locationExpenses"
	DatasetInvoices                = "invoices"
	DatasetPayrollRuns             = "payrollRuns"
)

// Local-only slots. They never travel in the master document.
const (
	SlotSystemMeta         = "systemMeta"
	SlotLogo               = "logo"
	SlotUnassignedFeedback = "unassignedFeedback"
)

// AllDatasets is the change-notification sentinel for "everything changed".
const AllDatasets = "all"

// Datasets lists every synced dataset in document order.
var Datasets = []string{
	DatasetClients,
	DatasetContacts,
	DatasetCentres,
	DatasetFramingMaterials,
	DatasetFinishMaterials,
	DatasetProjects,
	DatasetDefaultCostingVariables,
	DatasetUsers,
	DatasetProductionLogs,
	DatasetLocationExpenses,
	DatasetInvoices,
	DatasetPayrollRuns,
}

// IsSyncedDataset reports whether name is one of Datasets.
func IsSyncedDataset(name string) bool {
	for _, d := range Datasets {
		if d == name {
			return true
		}
	}
	return false
}

// IsRecordSlot reports whether name holds a record list in the local store.
func IsRecordSlot(name string) bool {
	return IsSyncedDataset(name) || name == SlotUnassignedFeedback
}
